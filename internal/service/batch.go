package service

import (
	"context"
	"log/slog"

	"github.com/jnst/pgq-consumer/internal/model"
	"github.com/jnst/pgq-consumer/internal/repository"
)

// BatchFetcher opens the next batch for a consumer.
type BatchFetcher struct {
	store    repository.QueueStore
	identity model.QueueIdentity
}

// NewBatchFetcher creates a fetcher for identity.
func NewBatchFetcher(store repository.QueueStore, identity model.QueueIdentity) *BatchFetcher {
	return &BatchFetcher{store: store, identity: identity}
}

// Fetch returns the next batch with its events in store order, or nil when nothing is pending.
func (f *BatchFetcher) Fetch(ctx context.Context) (*model.Batch, error) {
	batchID, ok, err := f.store.NextBatch(ctx, f.identity.Queue, f.identity.Consumer)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	slog.Info("fetching batch events", slog.Int64("batch_id", int64(batchID)))

	events, err := f.store.GetBatchEvents(ctx, batchID)
	if err != nil {
		return nil, err
	}

	return &model.Batch{ID: batchID, Events: events}, nil
}

// BatchFinalizer closes processed batches.
type BatchFinalizer struct {
	store repository.QueueStore
}

// NewBatchFinalizer creates a finalizer.
func NewBatchFinalizer(store repository.QueueStore) *BatchFinalizer {
	return &BatchFinalizer{store: store}
}

// Finalize marks the batch finished. A false result means the store had no such open batch.
func (f *BatchFinalizer) Finalize(ctx context.Context, batchID model.BatchID) (bool, error) {
	slog.Debug("finishing batch", slog.Int64("batch_id", int64(batchID)))

	finished, err := f.store.FinishBatch(ctx, batchID)
	if err != nil {
		return false, err
	}

	if !finished {
		slog.Warn("batch was not finished by the store", slog.Int64("batch_id", int64(batchID)))
	}

	return finished, nil
}
