package handler

import (
	"context"
	"log/slog"

	"github.com/jnst/pgq-consumer/internal/model"
)

// LogHandler accepts every event after logging it.
type LogHandler struct{}

// Handle logs the event.
func (LogHandler) Handle(ctx context.Context, event *model.Event) error {
	slog.InfoContext(ctx, "event received",
		slog.Int64("event_id", event.ID),
		slog.String("event_type", event.Type),
		slog.Int64("txid", event.TransactionID),
		slog.Int("retry_count", int(event.RetryCount)),
		slog.String("payload", event.Payload),
	)

	return nil
}
