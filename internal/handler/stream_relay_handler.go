package handler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/jnst/pgq-consumer/internal/model"
)

// StreamRelayHandler forwards each event into a Redis stream.
type StreamRelayHandler struct {
	redisClient rueidis.Client
	streamKey   string
}

// NewStreamRelayHandler creates a handler appending to streamKey.
func NewStreamRelayHandler(redisClient rueidis.Client, streamKey string) *StreamRelayHandler {
	return &StreamRelayHandler{
		redisClient: redisClient,
		streamKey:   streamKey,
	}
}

// Handle appends the event with XADD. Empty extras are not written.
func (h *StreamRelayHandler) Handle(ctx context.Context, event *model.Event) error {
	fields := h.redisClient.B().Xadd().Key(h.streamKey).Id("*").
		FieldValue().
		FieldValue("event_id", strconv.FormatInt(event.ID, 10)).
		FieldValue("event_type", event.Type).
		FieldValue("payload", event.Payload).
		FieldValue("txid", strconv.FormatInt(event.TransactionID, 10)).
		FieldValue("retry_count", strconv.Itoa(int(event.RetryCount))).
		FieldValue("enqueued_at", event.EnqueuedAt.UTC().Format(time.RFC3339Nano))

	for i, extra := range []string{event.Extra1, event.Extra2, event.Extra3, event.Extra4} {
		if extra != "" {
			fields = fields.FieldValue("extra"+strconv.Itoa(i+1), extra)
		}
	}

	if err := h.redisClient.Do(ctx, fields.Build()).Error(); err != nil {
		return fmt.Errorf("failed to relay event %d to stream %s: %w", event.ID, h.streamKey, err)
	}

	return nil
}
