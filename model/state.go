package model

// State represents the scheduling state of a process
type State string

const (
	StateRunning        State = "RUNNING"
	StateReady          State = "READY"
	StateBlockedSem     State = "SEM BLOCKED"
	StateBlockedSend    State = "SEND BLOCKED"
	StateBlockedReceive State = "RECEIVE BLOCKED"
)

// IsBlocked returns true when the process belongs in the blocked set
func (s State) IsBlocked() bool {
	switch s {
	case StateBlockedSem, StateBlockedSend, StateBlockedReceive:
		return true
	}
	return false
}

// IsRunnable returns true for states the run-selection may pick
func (s State) IsRunnable() bool {
	return s == StateReady || s == StateRunning
}

// Transition represents a permitted state change.
type Transition struct {
	From State
	To   State
}

// Transitions lists every permitted state change.
var Transitions = []Transition{
	// selected by run-selection
	{From: StateReady, To: StateRunning},
	// init re-selected while still running
	{From: StateRunning, To: StateRunning},
	// quantum expiry
	{From: StateRunning, To: StateReady},
	// P on a depleted semaphore
	{From: StateRunning, To: StateBlockedSem},
	// send always blocks the sender
	{From: StateRunning, To: StateBlockedSend},
	// receive with nothing pending
	{From: StateRunning, To: StateBlockedReceive},
	// V, or a delivered message
	{From: StateBlockedSem, To: StateReady},
	// delivered message or reply
	{From: StateBlockedSend, To: StateReady},
	{From: StateBlockedReceive, To: StateReady},
}

// CanTransition checks if a state change is permitted.
func CanTransition(from, to State) bool {
	for _, t := range Transitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}
