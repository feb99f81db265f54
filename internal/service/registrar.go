package service

import (
	"context"

	"github.com/jnst/pgq-consumer/internal/model"
	"github.com/jnst/pgq-consumer/internal/repository"
)

// Registrar makes sure the queue exists and the consumer is subscribed to it.
// Both calls are idempotent on the store side and safe to repeat on every attempt.
type Registrar struct {
	store    repository.QueueStore
	identity model.QueueIdentity
}

// NewRegistrar creates a registrar for identity.
func NewRegistrar(store repository.QueueStore, identity model.QueueIdentity) *Registrar {
	return &Registrar{store: store, identity: identity}
}

// EnsureQueue reports true when this call created the queue.
func (r *Registrar) EnsureQueue(ctx context.Context) (bool, error) {
	return r.store.CreateQueue(ctx, r.identity.Queue)
}

// EnsureConsumer reports true when this call registered the consumer.
func (r *Registrar) EnsureConsumer(ctx context.Context) (bool, error) {
	return r.store.RegisterConsumer(ctx, r.identity.Queue, r.identity.Consumer)
}
