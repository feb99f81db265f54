package service

import (
	"context"
	"log/slog"

	"github.com/jnst/pgq-consumer/internal/model"
	"github.com/jnst/pgq-consumer/internal/repository"
)

// EventServiceImpl implements EventService by inserting into a PgQ queue.
type EventServiceImpl struct {
	store          repository.QueueStore
	transactionMgr repository.TransactionManager
	queue          string
}

// NewEventServiceImpl creates a new EventService implementation.
func NewEventServiceImpl(
	store repository.QueueStore,
	transactionMgr repository.TransactionManager,
	queue string,
) EventService {
	return &EventServiceImpl{
		store:          store,
		transactionMgr: transactionMgr,
		queue:          queue,
	}
}

// Publish inserts the event in its own transaction and returns the event id.
// The event becomes visible to consumers once the transaction commits and the PgQ ticker runs.
func (s *EventServiceImpl) Publish(ctx context.Context, params *model.PublishEventParams) (int64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}

	var eventID int64

	err := s.transactionMgr.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.store.InsertEvent(ctx, s.queue, params)
		if err != nil {
			return err
		}

		eventID = id

		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("event published",
		slog.String("queue", s.queue),
		slog.Int64("event_id", eventID),
		slog.String("event_type", params.Type),
	)

	return eventID, nil
}
