package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/internal/idgen"
	"github.com/viant/procsim/service/messaging"
)

// MessageState represents the state of a message in the filesystem queue
type MessageState string

const (
	MessageStatePending   MessageState = "pending"
	MessageStateCompleted MessageState = "completed"
	MessageStateFailed    MessageState = "failed"
)

// Message implements messaging.Message for the filesystem queue
type Message[T any] struct {
	ID        string       `json:"id"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	name      string
	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack records the message under the completed directory
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = clock.Now()
	return m.queue.store(context.Background(), m.queue.completedDir, m)
}

// Nack puts the message back under its original name, or moves it to the
// dead letter directory once MaxRetries is exceeded.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.Retries++
	m.UpdatedAt = clock.Now()
	if err != nil {
		m.Error = err.Error()
	}
	if m.Retries > m.queue.config.MaxRetries {
		m.State = MessageStateFailed
		return m.queue.store(context.Background(), m.queue.dlqDir, m)
	}
	m.State = MessageStatePending
	return m.queue.store(context.Background(), m.queue.pendingDir, m)
}

// Config holds configuration for filesystem queue
type Config struct {
	// BaseURL is any afs supported location, e.g. file:///tmp/procsim/journal
	BaseURL    string
	MaxRetries int
}

// DefaultConfig returns a default queue configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:    "mem://localhost/procsim/journal",
		MaxRetries: 3,
	}
}

// Queue implements a filesystem-based messaging.Queue. Messages are consumed
// in publishing order.
type Queue[T any] struct {
	fs           afs.Service
	config       Config
	pendingDir   string
	completedDir string
	dlqDir       string
	seq          int
	mu           sync.Mutex
}

// Publish stores a new pending message
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	q.mu.Lock()
	q.seq++
	now := clock.Now()
	message := &Message[T]{
		ID:        idgen.New(),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: now,
		UpdatedAt: now,
		name:      fmt.Sprintf("%019d-%06d.json", now.UnixNano(), q.seq),
	}
	q.mu.Unlock()
	return q.store(ctx, q.pendingDir, message)
}

// Consume takes the oldest pending message; messaging.ErrEmpty is returned
// when there is none.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	pending, err := q.list(ctx, q.pendingDir)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, messaging.ErrEmpty
	}
	obj := pending[0]
	message, err := q.read(ctx, obj.URL())
	if err != nil {
		return nil, err
	}
	if err = q.fs.Delete(ctx, obj.URL()); err != nil {
		return nil, fmt.Errorf("failed to delete pending message %s: %w", obj.URL(), err)
	}
	message.name = obj.Name()
	message.queue = q
	return message, nil
}

// Size returns the number of pending messages
func (q *Queue[T]) Size(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	pending, err := q.list(ctx, q.pendingDir)
	return len(pending), err
}

func (q *Queue[T]) list(ctx context.Context, dir string) ([]storage.Object, error) {
	objects, err := q.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var ret []storage.Object
	for _, obj := range objects {
		if !obj.IsDir() && strings.HasSuffix(obj.Name(), ".json") {
			ret = append(ret, obj)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name() < ret[j].Name() })
	return ret, nil
}

func (q *Queue[T]) store(ctx context.Context, dir string, m *Message[T]) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	URL := url.Join(dir, m.name)
	if err = q.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write message %s: %w", URL, err)
	}
	return nil
}

func (q *Queue[T]) read(ctx context.Context, URL string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", URL, err)
	}
	message := &Message[T]{}
	if err = json.Unmarshal(data, message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", URL, err)
	}
	return message, nil
}

// NewQueue creates a filesystem-based queue, creating its directories.
func NewQueue[T any](ctx context.Context, fs afs.Service, config Config) (*Queue[T], error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	q := &Queue[T]{
		fs:           fs,
		config:       config,
		pendingDir:   url.Join(config.BaseURL, "pending"),
		completedDir: url.Join(config.BaseURL, "completed"),
		dlqDir:       url.Join(config.BaseURL, "dlq"),
	}
	for _, dir := range []string{q.pendingDir, q.completedDir, q.dlqDir} {
		if exists, _ := fs.Exists(ctx, dir); exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return q, nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
