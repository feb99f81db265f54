// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jnst/pgq-consumer/internal/model"
)

// DBTX is the subset of pgxpool.Pool and pgx.Tx used by the repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QueueStore defines the PgQ primitives the consumer relies on.
type QueueStore interface {
	// CreateQueue reports true when the queue was created by this call.
	CreateQueue(ctx context.Context, queue string) (bool, error)
	// RegisterConsumer reports true when the consumer was registered by this call.
	RegisterConsumer(ctx context.Context, queue, consumer string) (bool, error)
	// NextBatch returns false when no batch is available.
	NextBatch(ctx context.Context, queue, consumer string) (model.BatchID, bool, error)
	GetBatchEvents(ctx context.Context, batchID model.BatchID) ([]*model.Event, error)
	FinishBatch(ctx context.Context, batchID model.BatchID) (bool, error)
	RetryEvent(ctx context.Context, batchID model.BatchID, eventID int64, delaySeconds int) (bool, error)
	InsertEvent(ctx context.Context, queue string, params *model.PublishEventParams) (int64, error)
}

// TransactionManager defines methods for database transaction management.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
