// Package scheduler fires consumer attempts on a fixed interval, one at a time.
//
// The first attempt fires as soon as Run starts. Every later tick starts its own goroutine which
// tries to take the guard without blocking; when a previous attempt still holds it the tick is
// dropped, never queued.
//
// Cancelling the context given to Run only stops future ticks. An attempt that is already running
// continues on a context detached from that cancellation and Run does not wait for it. If the
// process exits first, the unfinished batch stays open in PgQ and is delivered again.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jnst/pgq-consumer/internal/metrics"
	"github.com/jnst/pgq-consumer/internal/model"
)

// Runner performs one attempt. service.ConsumerService satisfies it.
type Runner interface {
	RunOnce(ctx context.Context) (*model.BatchResult, error)
}

// Scheduler drives a Runner periodically with single-flight semantics.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	metrics  *metrics.Metrics

	// guard is held for the whole duration of an attempt.
	guard sync.Mutex
}

// New creates a scheduler. m may be nil.
func New(runner Runner, interval time.Duration, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		metrics:  m,
	}
}

// Run fires immediately and then on every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	attemptCtx := context.WithoutCancel(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("scheduler started", slog.Duration("interval", s.interval))

	go s.Fire(attemptCtx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				slog.Info("scheduler stopped")
				return
			}

			go s.Fire(attemptCtx)
		}
	}
}

// Fire runs one attempt synchronously unless another attempt holds the guard.
// It reports whether the attempt ran.
func (s *Scheduler) Fire(ctx context.Context) (ran bool) {
	if !s.guard.TryLock() {
		slog.Debug("attempt skipped, previous attempt still running")
		s.metrics.ObserveSkip()

		return false
	}
	defer s.guard.Unlock()

	ran = true

	defer func() {
		if r := recover(); r != nil {
			slog.Error("attempt panicked", slog.Any("panic", r))
			s.metrics.ObserveAttempt(metrics.ResultPanic, nil)
		}
	}()

	slog.Info("attempt started")

	result, err := s.runner.RunOnce(ctx)

	switch {
	case err != nil:
		slog.Error("attempt failed", slog.String("error", err.Error()))
		s.metrics.ObserveAttempt(metrics.ResultError, result)
	case result == nil:
		s.metrics.ObserveAttempt(metrics.ResultNoBatch, nil)
	default:
		s.metrics.ObserveAttempt(metrics.ResultBatch, result)
	}

	return true
}
