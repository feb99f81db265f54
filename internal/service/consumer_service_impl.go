package service

import (
	"context"
	"log/slog"

	"github.com/jnst/pgq-consumer/internal/handler"
	"github.com/jnst/pgq-consumer/internal/model"
	"github.com/jnst/pgq-consumer/internal/repository"
)

// ConsumerServiceImpl implements ConsumerService on a PgQ queue store.
type ConsumerServiceImpl struct {
	identity   model.QueueIdentity
	registrar  *Registrar
	fetcher    *BatchFetcher
	dispatcher *Dispatcher
	finalizer  *BatchFinalizer
}

// NewConsumerServiceImpl creates a new ConsumerService implementation.
func NewConsumerServiceImpl(
	store repository.QueueStore,
	h handler.Handler,
	identity model.QueueIdentity,
	retryDelaySeconds int,
) ConsumerService {
	return &ConsumerServiceImpl{
		identity:   identity,
		registrar:  NewRegistrar(store, identity),
		fetcher:    NewBatchFetcher(store, identity),
		dispatcher: NewDispatcher(h, NewRetryScheduler(store, retryDelaySeconds)),
		finalizer:  NewBatchFinalizer(store),
	}
}

// RunOnce registers the consumer, then processes and finishes at most one batch.
// Store errors abort the attempt and are returned; handler and retry failures are not.
func (s *ConsumerServiceImpl) RunOnce(ctx context.Context) (*model.BatchResult, error) {
	if err := s.register(ctx); err != nil {
		return nil, err
	}

	batch, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if batch == nil {
		slog.Debug("no batch available",
			slog.String("queue", s.identity.Queue),
			slog.String("consumer", s.identity.Consumer),
		)

		return nil, nil
	}

	result := &model.BatchResult{
		BatchID:  batch.ID,
		Outcomes: s.dispatcher.Dispatch(ctx, batch),
	}

	finished, err := s.finalizer.Finalize(ctx, batch.ID)
	if err != nil {
		return result, err
	}

	result.Finished = finished

	slog.Info("batch processed",
		slog.Int64("batch_id", int64(batch.ID)),
		slog.Int("events", len(result.Outcomes)),
		slog.Int("failed", result.Failed()),
		slog.Int("retry_failed", result.RetryFailed()),
	)

	return result, nil
}

func (s *ConsumerServiceImpl) register(ctx context.Context) error {
	created, err := s.registrar.EnsureQueue(ctx)
	if err != nil {
		return err
	}

	if created {
		slog.Info("queue created", slog.String("queue", s.identity.Queue))
	}

	registered, err := s.registrar.EnsureConsumer(ctx)
	if err != nil {
		return err
	}

	if registered {
		slog.Info("consumer registered for the first time",
			slog.String("queue", s.identity.Queue),
			slog.String("consumer", s.identity.Consumer),
		)
	}

	return nil
}
