package event

import (
	"time"

	"github.com/viant/procsim/internal/clock"
)

// Event types.
const (
	TypeCreated    = "created"
	TypeTerminated = "terminated"
	TypeTransition = "transition"
	TypeSent       = "sent"
	TypeDelivered  = "delivered"
	TypeIdle       = "idle"
)

// Context identifies what an event is about.
type Context struct {
	PID       int    `json:"pid"`
	EventType string `json:"eventType"`
	Operation string `json:"operation"`
}

// Event is a journal entry carrying typed data.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// Transition describes a process state change.
type Transition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
