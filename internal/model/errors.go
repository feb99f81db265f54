package model

import "errors"

var (
	// ErrDatabaseURLRequired is returned when the connection string is blank.
	ErrDatabaseURLRequired = errors.New("database url is required")
	// ErrQueueNameRequired is returned when the queue name is blank.
	ErrQueueNameRequired = errors.New("queue name is required")
	// ErrConsumerNameRequired is returned when the consumer name is blank.
	ErrConsumerNameRequired = errors.New("consumer name is required")
	// ErrInvalidPollInterval is returned when the poll interval is not positive.
	ErrInvalidPollInterval = errors.New("poll interval must be positive")
	// ErrInvalidRetryDelay is returned when the retry delay is negative.
	ErrInvalidRetryDelay = errors.New("retry delay must not be negative")
	// ErrUnknownHandler is returned when the configured handler name is not supported.
	ErrUnknownHandler = errors.New("unknown handler")
	// ErrEventTypeRequired is returned when an event has no type.
	ErrEventTypeRequired = errors.New("event type is required")
	// ErrHandlerNotRegistered is returned when no handler exists for an event type.
	ErrHandlerNotRegistered = errors.New("event handler is not registered")
	// ErrHandlerPanicked is returned when a handler panics while processing an event.
	ErrHandlerPanicked = errors.New("event handler panicked")
	// ErrRetryRejected is returned when the store did not accept an event retry.
	ErrRetryRejected = errors.New("event retry was not scheduled")
)
