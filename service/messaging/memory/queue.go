package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/internal/idgen"
	"github.com/viant/procsim/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	// MaxRetries is how many times a message may be returned with Nack
	// before it is dead-lettered.
	MaxRetries int
	// DeadLetter keeps messages that exceeded MaxRetries.
	DeadLetter bool
	// QueueBuffer bounds the number of pending messages; 0 means unbounded.
	QueueBuffer int
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		DeadLetter: true,
	}
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	processed  bool
	createdAt  time.Time
}

// ID returns the queue-assigned message id
func (m *Message[T]) ID() string {
	return m.id
}

// CreatedAt returns the publishing time
func (m *Message[T]) CreatedAt() time.Time {
	return m.createdAt
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	return nil
}

// Nack puts the message back at the head of the queue, or dead-letters it
// once MaxRetries is exceeded.
func (m *Message[T]) Nack(_ error) error {
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.retryCount++

	if m.retryCount <= m.queue.config.MaxRetries {
		retry := &Message[T]{
			id:         m.id,
			payload:    m.payload,
			queue:      m.queue,
			retryCount: m.retryCount,
			createdAt:  m.createdAt,
		}
		m.queue.messages = append([]*Message[T]{retry}, m.queue.messages...)
	} else if m.queue.config.DeadLetter {
		m.queue.dlq = append(m.queue.dlq, m)
	}
	return nil
}

// Queue implements an in-memory, non-blocking messaging.Queue. It is not
// safe for concurrent use; callers serialize access.
type Queue[T any] struct {
	messages []*Message[T]
	dlq      []*Message[T]
	config   Config
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer < 0 {
		config.QueueBuffer = 0
	}
	return &Queue[T]{
		messages: make([]*Message[T], 0),
		dlq:      make([]*Message[T], 0),
		config:   config,
	}
}

// Publish appends a new item to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("nil payload")
	}
	if q.config.QueueBuffer > 0 && len(q.messages) >= q.config.QueueBuffer {
		return messaging.ErrQueueFull
	}
	q.messages = append(q.messages, &Message[T]{
		id:        idgen.New(),
		payload:   *t,
		queue:     q,
		createdAt: clock.Now(),
	})
	return nil
}

// Consume removes and returns the oldest item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(q.messages) == 0 {
		return nil, messaging.ErrEmpty
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg, nil
}

// Take removes and returns the oldest item whose payload matches predicate.
func (q *Queue[T]) Take(predicate func(*T) bool) (*Message[T], bool) {
	for i, msg := range q.messages {
		if predicate(&msg.payload) {
			q.messages = append(q.messages[:i], q.messages[i+1:]...)
			return msg, true
		}
	}
	return nil, false
}

// Pending returns copies of the queued payloads, oldest first.
func (q *Queue[T]) Pending() []T {
	out := make([]T, 0, len(q.messages))
	for _, msg := range q.messages {
		out = append(out, msg.payload)
	}
	return out
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DLQSize returns the number of messages in the dead letter queue
func (q *Queue[T]) DLQSize() int {
	return len(q.dlq)
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
