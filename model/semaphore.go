package model

// Semaphore represents a counting semaphore. A negative Value means exactly
// -Value processes are waiting in Waiters.
type Semaphore struct {
	ID      int   `json:"id"`
	Value   int   `json:"value"`
	Waiters []int `json:"waiters"`
}

// NewSemaphore creates a semaphore with no waiters
func NewSemaphore(id, value int) *Semaphore {
	return &Semaphore{ID: id, Value: value}
}

// Enqueue appends a waiting pid
func (s *Semaphore) Enqueue(pid int) {
	s.Waiters = append(s.Waiters, pid)
}

// Dequeue removes the oldest waiter; ok is false when nobody waits.
func (s *Semaphore) Dequeue() (pid int, ok bool) {
	if len(s.Waiters) == 0 {
		return NoPID, false
	}
	pid = s.Waiters[0]
	s.Waiters = s.Waiters[1:]
	return pid, true
}

// Withdraw removes pid from the waiters, returning true if it was waiting.
func (s *Semaphore) Withdraw(pid int) bool {
	for i, candidate := range s.Waiters {
		if candidate == pid {
			s.Waiters = append(s.Waiters[:i], s.Waiters[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a detached copy.
func (s *Semaphore) Clone() *Semaphore {
	if s == nil {
		return nil
	}
	ret := *s
	ret.Waiters = append([]int(nil), s.Waiters...)
	return &ret
}
