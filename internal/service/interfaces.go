// Package service provides business logic layer implementations.
package service

import (
	"context"

	"github.com/jnst/pgq-consumer/internal/model"
)

// ConsumerService runs the batch lifecycle for one queue consumer.
type ConsumerService interface {
	// RunOnce performs one attempt: register, fetch, dispatch, finalize.
	// It returns a nil result when no batch was available.
	RunOnce(ctx context.Context) (*model.BatchResult, error)
}

// EventService defines business logic methods for producing events.
type EventService interface {
	Publish(ctx context.Context, params *model.PublishEventParams) (int64, error)
}
