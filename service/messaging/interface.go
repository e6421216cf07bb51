package messaging

import (
	"context"
	"errors"
)

var (
	// ErrEmpty is returned by Consume when no message is pending.
	ErrEmpty = errors.New("messaging: queue is empty")
	// ErrQueueFull is returned by Publish when a bounded queue is at capacity.
	ErrQueueFull = errors.New("messaging: queue is full")
)

// Queue represents an abstract message queue for any payload type.
// Implementations never block: Consume on an empty queue returns ErrEmpty.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves the oldest message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack returns the message to the queue for another attempt
	Nack(err error) error
}
