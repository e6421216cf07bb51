package model

import "errors"

// Kind classifies a rejected operation.
type Kind int

const (
	KindInvalidArgument Kind = iota + 1
	KindNotFound
	KindPrecondition
)

// Kind sentinels; errors.Is matches every Error of the same kind.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrPrecondition    = errors.New("precondition violation")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindNotFound:
		return ErrNotFound
	case KindPrecondition:
		return ErrPrecondition
	}
	return nil
}

func (k Kind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return "unknown"
}

// Error is a rejection reported by a scheduler or IPC operation. The system
// state is left exactly as it was before the call.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is reports whether target is this error's kind sentinel.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Scheduler errors.
var (
	ErrInvalidPriority     = newError(KindInvalidArgument, "invalid priority")
	ErrInvalidPID          = newError(KindInvalidArgument, "invalid pid")
	ErrForkOfInit          = newError(KindPrecondition, "cannot fork the init process")
	ErrOtherProcessesExist = newError(KindPrecondition, "cannot kill init while other processes exist")
	ErrNoRunningProcess    = newError(KindPrecondition, "no running process")
	ErrProcessNotFound     = newError(KindNotFound, "process not found")
)

// Semaphore errors.
var (
	ErrInvalidID          = newError(KindInvalidArgument, "invalid semaphore id")
	ErrNegativeValue      = newError(KindInvalidArgument, "negative semaphore value")
	ErrAlreadyInitialized = newError(KindPrecondition, "semaphore already initialized")
	ErrNotInitialized     = newError(KindNotFound, "semaphore not initialized")
)

// Messaging errors.
var (
	ErrEmptyMessage     = newError(KindInvalidArgument, "empty message")
	ErrMessageTooLong   = newError(KindInvalidArgument, "message too long")
	ErrNotBlockedOnSend = newError(KindPrecondition, "target is not waiting for a reply")
	ErrMailboxFull      = newError(KindPrecondition, "mailbox is full")
)

// ErrShutdown is returned when init is killed on an otherwise empty system;
// the host is expected to exit with status 0.
var ErrShutdown = errors.New("system shutdown")
