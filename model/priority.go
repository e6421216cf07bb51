package model

import (
	"fmt"
	"strings"
)

// Priority represents a scheduling priority level
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityNormal
	PriorityLow
	// PriorityInit is reserved for the init process; it has no ready queue.
	PriorityInit
)

// ReadyPriorities lists the queued priorities in selection order.
var ReadyPriorities = []Priority{PriorityHigh, PriorityNormal, PriorityLow}

var priorityNames = map[Priority]string{
	PriorityHigh:   "HIGH",
	PriorityNormal: "NORMAL",
	PriorityLow:    "LOW",
	PriorityInit:   "INIT",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// IsValid returns true for any known priority, including init
func (p Priority) IsValid() bool {
	_, ok := priorityNames[p]
	return ok
}

// IsQueued returns true if processes with this priority live on a ready queue
func (p Priority) IsQueued() bool {
	return p == PriorityHigh || p == PriorityNormal || p == PriorityLow
}

// ParsePriority parses either a numeric level (0-3) or a priority name.
func ParsePriority(text string) (Priority, error) {
	text = strings.TrimSpace(text)
	for p, name := range priorityNames {
		if strings.EqualFold(name, text) || fmt.Sprint(int(p)) == text {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, text)
}
