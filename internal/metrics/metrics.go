// Package metrics exposes Prometheus collectors for the consumer loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jnst/pgq-consumer/internal/model"
)

const namespace = "pgq_consumer"

// Attempt results used as the "result" label.
const (
	ResultNoBatch = "no_batch"
	ResultBatch   = "batch"
	ResultError   = "error"
	ResultPanic   = "panic"
)

// Metrics groups the consumer collectors. A nil *Metrics records nothing.
type Metrics struct {
	Attempts      *prometheus.CounterVec
	SkippedTicks  prometheus.Counter
	EventsHandled prometheus.Counter
	EventsFailed  prometheus.Counter
	RetryFailures prometheus.Counter
	BatchSize     prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Processing attempts that acquired the guard, by result.",
		}, []string{"result"}),
		SkippedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_ticks_total",
			Help:      "Ticks dropped because an attempt was still running.",
		}),
		EventsHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_handled_total",
			Help:      "Events accepted by the handler.",
		}),
		EventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_failed_total",
			Help:      "Events rejected by the handler.",
		}),
		RetryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_failures_total",
			Help:      "Failed events whose retry could not be scheduled.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of events per fetched batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		}),
	}

	reg.MustRegister(m.Attempts, m.SkippedTicks, m.EventsHandled, m.EventsFailed, m.RetryFailures, m.BatchSize)

	return m
}

// ObserveSkip counts a dropped tick.
func (m *Metrics) ObserveSkip() {
	if m == nil {
		return
	}

	m.SkippedTicks.Inc()
}

// ObserveAttempt counts a finished attempt and, when a batch was processed, its event outcomes.
func (m *Metrics) ObserveAttempt(result string, batch *model.BatchResult) {
	if m == nil {
		return
	}

	m.Attempts.WithLabelValues(result).Inc()

	if batch == nil {
		return
	}

	m.BatchSize.Observe(float64(len(batch.Outcomes)))
	m.EventsHandled.Add(float64(batch.Handled()))
	m.EventsFailed.Add(float64(batch.Failed()))
	m.RetryFailures.Add(float64(batch.RetryFailed()))
}
