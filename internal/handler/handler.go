// Package handler provides the pluggable event handlers invoked by the consumer.
package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jnst/pgq-consumer/internal/model"
)

// Handler processes one event. A returned error schedules the event for retry.
type Handler interface {
	Handle(ctx context.Context, event *model.Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event *model.Event) error

// Handle calls f(ctx, event).
func (f HandlerFunc) Handle(ctx context.Context, event *model.Event) error {
	return f(ctx, event)
}

// Registry routes events to handlers by event type.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	fallback Handler
}

// NewRegistry creates a registry. fallback handles types without a registered handler and may be nil.
func NewRegistry(fallback Handler) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		fallback: fallback,
	}
}

// Register binds h to eventType.
func (r *Registry) Register(eventType string, h Handler) error {
	normalized := strings.TrimSpace(eventType)
	if normalized == "" {
		return model.ErrEventTypeRequired
	}

	if h == nil {
		return fmt.Errorf("nil handler for event type %s", normalized)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[normalized]; exists {
		return fmt.Errorf("event handler already registered: %s", normalized)
	}

	r.handlers[normalized] = h

	return nil
}

// Handle dispatches the event to the handler registered for its type.
func (r *Registry) Handle(ctx context.Context, event *model.Event) error {
	r.mu.RLock()
	h, ok := r.handlers[strings.TrimSpace(event.Type)]
	r.mu.RUnlock()

	if ok {
		return h.Handle(ctx, event)
	}

	if r.fallback != nil {
		return r.fallback.Handle(ctx, event)
	}

	return fmt.Errorf("%w: %s", model.ErrHandlerNotRegistered, event.Type)
}
