package model

import (
	"fmt"
	"time"
)

// NoPID marks an absent process reference (no parent, no semaphore).
const NoPID = -1

// Process represents a simulated process record
type Process struct {
	PID       int       `json:"pid"`
	ParentPID int       `json:"parentPid"`
	Priority  Priority  `json:"priority"`
	State     State     `json:"state"`
	Semaphore int       `json:"semaphore"`
	Message   *Message  `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewProcess creates a ready process
func NewProcess(pid int, priority Priority, createdAt time.Time) *Process {
	return &Process{
		PID:       pid,
		ParentPID: NoPID,
		Priority:  priority,
		State:     StateReady,
		Semaphore: NoPID,
		CreatedAt: createdAt,
	}
}

// IsInit returns true for the init process
func (p *Process) IsInit() bool {
	return p.Priority == PriorityInit
}

// TransitionTo moves the process to a new state, rejecting changes that are
// not listed in Transitions.
func (p *Process) TransitionTo(to State) error {
	if !CanTransition(p.State, to) {
		return fmt.Errorf("pid %d: invalid transition %s -> %s", p.PID, p.State, to)
	}
	p.State = to
	if to != StateBlockedSem {
		p.Semaphore = NoPID
	}
	return nil
}

// Deliver stores a message in the pending slot.
func (p *Process) Deliver(msg *Message) {
	p.Message = msg
}

// TakeMessage consumes the pending message, if any.
func (p *Process) TakeMessage() *Message {
	msg := p.Message
	p.Message = nil
	return msg
}

// Clone returns a detached copy suitable for reporting.
func (p *Process) Clone() *Process {
	if p == nil {
		return nil
	}
	ret := *p
	if p.Message != nil {
		msg := *p.Message
		ret.Message = &msg
	}
	return &ret
}
