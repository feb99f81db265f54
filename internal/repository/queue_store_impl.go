package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jnst/pgq-consumer/internal/model"
)

// pgq functions return 1 when the call changed state.
const statusApplied = 1

const (
	createQueueSQL      = `select pgq.create_queue($1)`
	registerConsumerSQL = `select pgq.register_consumer($1, $2)`
	nextBatchSQL        = `select pgq.next_batch($1, $2)`
	finishBatchSQL      = `select pgq.finish_batch($1)`
	retryEventSQL       = `select pgq.event_retry($1, $2, $3::integer)`
	insertEventSQL      = `select pgq.insert_event($1, $2, $3, $4, $5, $6, $7)`
	getBatchEventsSQL   = `select ev_id, ev_time, ev_txid, ev_retry, ev_type, ev_data,
       ev_extra1, ev_extra2, ev_extra3, ev_extra4
  from pgq.get_batch_events($1)`
)

var errDelayOutOfRange = errors.New("retry delay out of range")

// QueueStoreImpl implements QueueStore on top of the PgQ SQL API.
type QueueStoreImpl struct {
	db DBTX
}

// NewQueueStoreImpl creates a new QueueStore implementation.
func NewQueueStoreImpl(db DBTX) QueueStore {
	return &QueueStoreImpl{db: db}
}

// conn returns the transaction bound to ctx, if any, so inserts join the caller's transaction.
func (r *QueueStoreImpl) conn(ctx context.Context) DBTX {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}

	return r.db
}

// CreateQueue creates the queue unless it already exists.
func (r *QueueStoreImpl) CreateQueue(ctx context.Context, queue string) (bool, error) {
	status, err := r.status(ctx, createQueueSQL, queue)
	if err != nil {
		return false, fmt.Errorf("failed to create queue %q: %w", queue, err)
	}

	return status == statusApplied, nil
}

// RegisterConsumer subscribes the consumer to the queue unless already registered.
func (r *QueueStoreImpl) RegisterConsumer(ctx context.Context, queue, consumer string) (bool, error) {
	status, err := r.status(ctx, registerConsumerSQL, queue, consumer)
	if err != nil {
		return false, fmt.Errorf("failed to register consumer %q on queue %q: %w", consumer, queue, err)
	}

	return status == statusApplied, nil
}

// NextBatch allocates the next batch for the consumer.
func (r *QueueStoreImpl) NextBatch(ctx context.Context, queue, consumer string) (model.BatchID, bool, error) {
	var id pgtype.Int8
	if err := r.conn(ctx).QueryRow(ctx, nextBatchSQL, queue, consumer).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("failed to get next batch for %q/%q: %w", queue, consumer, err)
	}

	if !id.Valid {
		return 0, false, nil
	}

	return model.BatchID(id.Int64), true, nil
}

// GetBatchEvents lists the events of a batch in the order the store returns them.
func (r *QueueStoreImpl) GetBatchEvents(ctx context.Context, batchID model.BatchID) ([]*model.Event, error) {
	rows, err := r.conn(ctx).Query(ctx, getBatchEventsSQL, int64(batchID))
	if err != nil {
		return nil, fmt.Errorf("failed to get events of batch %d: %w", batchID, err)
	}
	defer rows.Close()

	var events []*model.Event

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event of batch %d: %w", batchID, err)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events of batch %d: %w", batchID, err)
	}

	return events, nil
}

// FinishBatch closes the batch so the consumer's position advances past it.
func (r *QueueStoreImpl) FinishBatch(ctx context.Context, batchID model.BatchID) (bool, error) {
	status, err := r.status(ctx, finishBatchSQL, int64(batchID))
	if err != nil {
		return false, fmt.Errorf("failed to finish batch %d: %w", batchID, err)
	}

	return status == statusApplied, nil
}

// RetryEvent schedules the event for redelivery after delaySeconds.
func (r *QueueStoreImpl) RetryEvent(
	ctx context.Context, batchID model.BatchID, eventID int64, delaySeconds int,
) (bool, error) {
	if delaySeconds < 0 || delaySeconds > math.MaxInt32 {
		return false, fmt.Errorf("%w: %d", errDelayOutOfRange, delaySeconds)
	}

	status, err := r.status(ctx, retryEventSQL, int64(batchID), eventID, int32(delaySeconds))
	if err != nil {
		return false, fmt.Errorf("failed to retry event %d of batch %d: %w", eventID, batchID, err)
	}

	return status == statusApplied, nil
}

// InsertEvent inserts an event into the queue and returns its id.
func (r *QueueStoreImpl) InsertEvent(ctx context.Context, queue string, params *model.PublishEventParams) (int64, error) {
	var id int64

	err := r.conn(ctx).QueryRow(ctx, insertEventSQL,
		queue,
		params.Type,
		params.Payload,
		nullText(params.Extra1),
		nullText(params.Extra2),
		nullText(params.Extra3),
		nullText(params.Extra4),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event into queue %q: %w", queue, err)
	}

	return id, nil
}

func (r *QueueStoreImpl) status(ctx context.Context, sql string, args ...any) (int32, error) {
	var status pgtype.Int4
	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&status); err != nil {
		return 0, err
	}

	return status.Int32, nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		event                          model.Event
		retry                          pgtype.Int4
		evType, data                   pgtype.Text
		extra1, extra2, extra3, extra4 pgtype.Text
	)

	if err := row.Scan(
		&event.ID,
		&event.EnqueuedAt,
		&event.TransactionID,
		&retry,
		&evType,
		&data,
		&extra1,
		&extra2,
		&extra3,
		&extra4,
	); err != nil {
		return nil, err
	}

	event.RetryCount = retry.Int32
	event.Type = evType.String
	event.Payload = data.String
	event.Extra1 = extra1.String
	event.Extra2 = extra2.String
	event.Extra3 = extra3.String
	event.Extra4 = extra4.String

	return &event, nil
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
