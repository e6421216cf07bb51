package idgen

import (
	"strconv"

	"github.com/google/uuid"
)

// NewFunc generates a message identifier. Override in tests for determinism.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique message identifier.
func New() string { return NewFunc() }

// Sequence returns a generator yielding prefix-1, prefix-2, ...; handy as a
// NewFunc replacement in tests.
func Sequence(prefix string) func() string {
	next := 0
	return func() string {
		next++
		return prefix + "-" + strconv.Itoa(next)
	}
}

