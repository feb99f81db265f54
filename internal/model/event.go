// Package model defines domain models and data structures.
package model

import (
	"fmt"
	"time"
)

// Event represents one event read from a PgQ batch. Its content never changes once read.
type Event struct {
	ID            int64     `json:"id"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
	TransactionID int64     `json:"transaction_id"`
	RetryCount    int32     `json:"retry_count"`
	Type          string    `json:"type"`
	Payload       string    `json:"payload"`
	Extra1        string    `json:"extra1,omitempty"`
	Extra2        string    `json:"extra2,omitempty"`
	Extra3        string    `json:"extra3,omitempty"`
	Extra4        string    `json:"extra4,omitempty"`
}

// String renders every field of the event for logging.
func (e *Event) String() string {
	return fmt.Sprintf(
		"Event[id=%d, time=%s, txid=%d, retry=%d, type=%s, data=%s, extra1=%s, extra2=%s, extra3=%s, extra4=%s]",
		e.ID, e.EnqueuedAt.Format(time.RFC3339), e.TransactionID, e.RetryCount,
		e.Type, e.Payload, e.Extra1, e.Extra2, e.Extra3, e.Extra4,
	)
}

// PublishEventParams represents parameters for inserting a new event into a queue.
type PublishEventParams struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
	Extra1  string `json:"extra1,omitempty"`
	Extra2  string `json:"extra2,omitempty"`
	Extra3  string `json:"extra3,omitempty"`
	Extra4  string `json:"extra4,omitempty"`
}

// Validate validates the publish event parameters.
func (p *PublishEventParams) Validate() error {
	if p.Type == "" {
		return ErrEventTypeRequired
	}

	return nil
}
