package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jnst/pgq-consumer/internal/handler"
	"github.com/jnst/pgq-consumer/internal/model"
	"github.com/jnst/pgq-consumer/internal/repository"
)

// RetryScheduler requeues failed events after a fixed delay.
type RetryScheduler struct {
	store        repository.QueueStore
	delaySeconds int
}

// NewRetryScheduler creates a retry scheduler using the same delay for every event.
func NewRetryScheduler(store repository.QueueStore, delaySeconds int) *RetryScheduler {
	return &RetryScheduler{store: store, delaySeconds: delaySeconds}
}

// Schedule asks the store to redeliver the event later. It is attempted once; failures are
// logged and returned for bookkeeping only.
func (s *RetryScheduler) Schedule(ctx context.Context, batchID model.BatchID, eventID int64) error {
	scheduled, err := s.store.RetryEvent(ctx, batchID, eventID, s.delaySeconds)
	if err == nil && !scheduled {
		err = model.ErrRetryRejected
	}

	if err != nil {
		slog.Error("failed to schedule event retry",
			slog.Int64("batch_id", int64(batchID)),
			slog.Int64("event_id", eventID),
			slog.Int("delay_seconds", s.delaySeconds),
			slog.String("error", err.Error()),
		)

		return err
	}

	return nil
}

// Dispatcher hands the events of a batch to the handler one at a time.
type Dispatcher struct {
	handler handler.Handler
	retry   *RetryScheduler
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(h handler.Handler, retry *RetryScheduler) *Dispatcher {
	return &Dispatcher{handler: h, retry: retry}
}

// Dispatch processes every event of the batch in order. A failed event is scheduled for retry
// and never stops the remaining events.
func (d *Dispatcher) Dispatch(ctx context.Context, batch *model.Batch) []model.EventOutcome {
	outcomes := make([]model.EventOutcome, 0, len(batch.Events))

	for _, event := range batch.Events {
		slog.Info("handling event", slog.Int64("event_id", event.ID), slog.String("event_type", event.Type))

		outcome := model.EventOutcome{EventID: event.ID}

		if err := d.handle(ctx, event); err != nil {
			slog.Error("failed to handle event",
				slog.Int64("batch_id", int64(batch.ID)),
				slog.Int64("event_id", event.ID),
				slog.String("error", err.Error()),
			)

			outcome.HandleErr = err
			outcome.RetryErr = d.retry.Schedule(ctx, batch.ID, event.ID)
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

func (d *Dispatcher) handle(ctx context.Context, event *model.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", model.ErrHandlerPanicked, r)
		}
	}()

	return d.handler.Handle(ctx, event)
}
