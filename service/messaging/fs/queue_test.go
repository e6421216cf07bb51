package fs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/procsim/service/messaging"
)

type entry struct {
	PID  int    `json:"pid"`
	Text string `json:"text"`
}

func TestQueue(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	queue, err := NewQueue[entry](ctx, fs, Config{BaseURL: "mem://localhost/procsim/queue_test", MaxRetries: 1})
	require.NoError(t, err)

	_, err = queue.Consume(ctx)
	assert.ErrorIs(t, err, messaging.ErrEmpty)

	for i, text := range []string{"a", "b", "c"} {
		require.NoError(t, queue.Publish(ctx, &entry{PID: i, Text: text}))
	}
	size, err := queue.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	msg, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", msg.T().Text)
	require.NoError(t, msg.Ack())
	assert.Error(t, msg.Ack())

	msg, err = queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", msg.T().Text)
	require.NoError(t, msg.Nack(errors.New("retry")))

	msg, err = queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", msg.T().Text)
	require.NoError(t, msg.Nack(errors.New("again")))

	msg, err = queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", msg.T().Text)
	assert.Equal(t, 2, msg.T().PID)
	require.NoError(t, msg.Ack())

	_, err = queue.Consume(ctx)
	assert.ErrorIs(t, err, messaging.ErrEmpty)

	dead, err := queue.list(ctx, queue.dlqDir)
	require.NoError(t, err)
	assert.Len(t, dead, 1)
	completed, err := queue.list(ctx, queue.completedDir)
	require.NoError(t, err)
	assert.Len(t, completed, 2)
}

func TestNewQueue(t *testing.T) {
	_, err := NewQueue[entry](context.Background(), afs.New(), Config{})
	assert.Error(t, err)
}
