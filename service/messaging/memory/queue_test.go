package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/procsim/service/messaging"
)

type TestPayload struct {
	ID      string
	Message string
	Count   int
}

func TestQueue(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx := context.Background()
	payload := TestPayload{ID: "test-1", Message: "Hello, world!", Count: 1}

	err := queue.Publish(ctx, &payload)
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)
	assert.Equal(t, 0, queue.Size())

	msgData := message.T()
	assert.Equal(t, payload.ID, msgData.ID)
	assert.Equal(t, payload.Message, msgData.Message)
	assert.Equal(t, payload.Count, msgData.Count)

	assert.NoError(t, message.Ack())
	// double ack
	assert.Error(t, message.Ack())

	_, err = queue.Consume(ctx)
	assert.ErrorIs(t, err, messaging.ErrEmpty)
}

func TestQueueRetries(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 2
	queue := NewQueue[TestPayload](config)
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &TestPayload{ID: "retry-test"}))
	require.NoError(t, queue.Publish(ctx, &TestPayload{ID: "other"}))

	for i := 0; i < 2; i++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		assert.Equal(t, "retry-test", message.T().ID, "nacked message returns to the head")
		assert.NoError(t, message.Nack(nil))
	}

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.NoError(t, message.Nack(nil))
	assert.Equal(t, 1, queue.DLQSize())
	assert.Equal(t, 1, queue.Size())
}

func TestQueueBuffer(t *testing.T) {
	config := DefaultConfig()
	config.QueueBuffer = 1
	queue := NewQueue[TestPayload](config)
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &TestPayload{ID: "a"}))
	assert.ErrorIs(t, queue.Publish(ctx, &TestPayload{ID: "b"}), messaging.ErrQueueFull)
	assert.Equal(t, 1, queue.Size())
}

func TestQueueTake(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c", "b"} {
		require.NoError(t, queue.Publish(ctx, &TestPayload{ID: id}))
	}

	msg, ok := queue.Take(func(p *TestPayload) bool { return p.ID == "b" })
	require.True(t, ok)
	assert.NotEmpty(t, msg.ID())
	assert.Equal(t, "b", msg.T().ID)

	_, ok = queue.Take(func(p *TestPayload) bool { return p.ID == "z" })
	assert.False(t, ok)

	pending := queue.Pending()
	require.Len(t, pending, 3)
	assert.Equal(t, []string{"a", "c", "b"}, []string{pending[0].ID, pending[1].ID, pending[2].ID})
}

func TestQueueCancelledContext(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, queue.Publish(ctx, &TestPayload{}), context.Canceled)
	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
