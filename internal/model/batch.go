package model

import "strings"

// BatchID identifies a store-side batch. It is only valid within the attempt that fetched it.
type BatchID int64

// Batch is an open batch together with its events in store order.
type Batch struct {
	ID     BatchID
	Events []*Event
}

// QueueIdentity names the queue and the consumer reading from it.
type QueueIdentity struct {
	Queue    string
	Consumer string
}

// Validate validates the queue identity.
func (q QueueIdentity) Validate() error {
	if strings.TrimSpace(q.Queue) == "" {
		return ErrQueueNameRequired
	}

	if strings.TrimSpace(q.Consumer) == "" {
		return ErrConsumerNameRequired
	}

	return nil
}

// EventOutcome is the result of dispatching one event.
type EventOutcome struct {
	EventID   int64
	HandleErr error
	// RetryErr is set when the event failed and scheduling its retry failed too.
	RetryErr error
}

// Failed reports whether the handler failed for this event.
func (o EventOutcome) Failed() bool {
	return o.HandleErr != nil
}

// Retried reports whether a retry was scheduled successfully.
func (o EventOutcome) Retried() bool {
	return o.HandleErr != nil && o.RetryErr == nil
}

// BatchResult collects the outcomes of one processed batch in dispatch order.
type BatchResult struct {
	BatchID  BatchID
	Outcomes []EventOutcome
	// Finished is false when finish_batch reported that nothing was closed.
	Finished bool
}

// Handled returns the number of events the handler accepted.
func (r *BatchResult) Handled() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Failed() {
			n++
		}
	}

	return n
}

// Failed returns the number of events the handler rejected.
func (r *BatchResult) Failed() int {
	return len(r.Outcomes) - r.Handled()
}

// RetryFailed returns the number of failed events whose retry could not be scheduled.
func (r *BatchResult) RetryFailed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Failed() && o.RetryErr != nil {
			n++
		}
	}

	return n
}
