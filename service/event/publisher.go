package event

import (
	"context"
	"errors"

	"github.com/viant/procsim/service/messaging"
)

// Publisher writes events to a queue and reads them back.
type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// Publish stamps and enqueues an event. A nil publisher discards it.
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	if p == nil || p.queue == nil {
		return nil
	}
	return p.queue.Publish(ctx, event)
}

// Consume returns the oldest event, acknowledging it.
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	var ret *Event[T]
	err := p.consume(ctx, func(event *Event[T]) error {
		ret = event
		return nil
	})
	return ret, err
}

// Process hands every pending event to handler, oldest first. An event the
// handler fails on is returned to the queue with Nack, which dead-letters it
// once the queue's retry limit is exceeded, and processing stops.
func (p *Publisher[T]) Process(ctx context.Context, handler func(event *Event[T]) error) (int, error) {
	if p == nil || p.queue == nil {
		return 0, nil
	}
	processed := 0
	for {
		err := p.consume(ctx, handler)
		if errors.Is(err, messaging.ErrEmpty) {
			return processed, nil
		}
		if err != nil {
			return processed, err
		}
		processed++
	}
}

// Drain consumes every pending event.
func (p *Publisher[T]) Drain(ctx context.Context) ([]*Event[T], error) {
	var out []*Event[T]
	_, err := p.Process(ctx, func(event *Event[T]) error {
		out = append(out, event)
		return nil
	})
	return out, err
}

func (p *Publisher[T]) consume(ctx context.Context, handler func(event *Event[T]) error) error {
	if p == nil || p.queue == nil {
		return messaging.ErrEmpty
	}
	msg, err := p.queue.Consume(ctx)
	if err != nil {
		return err
	}
	if msg == nil {
		return messaging.ErrEmpty
	}
	if err = handler(msg.T()); err != nil {
		if nackErr := msg.Nack(err); nackErr != nil {
			return errors.Join(err, nackErr)
		}
		return err
	}
	return msg.Ack()
}
