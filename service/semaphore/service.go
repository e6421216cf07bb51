// Package semaphore implements counting semaphores (N, P, V) on top of the
// scheduler's block and wake primitives.
package semaphore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/viant/procsim/internal/logger"
	"github.com/viant/procsim/model"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/dao/semaphore/memory"
	"github.com/viant/procsim/service/scheduler"
)

// Outcome reports the effect of P or V.
type Outcome struct {
	Semaphore *model.Semaphore `json:"semaphore"`
	// Blocked is the process P blocked, if any.
	Blocked *model.Process `json:"blocked,omitempty"`
	// Woken is the process V made ready, if any.
	Woken *model.Process `json:"woken,omitempty"`
}

// Service manages the semaphore table.
type Service struct {
	table     *memory.Service
	scheduler *scheduler.Service
	logger    *slog.Logger
}

var _ scheduler.Releaser = (*Service)(nil)

// NewSemaphore initializes the semaphore id with value.
func (s *Service) NewSemaphore(ctx context.Context, id, value int) (*model.Semaphore, error) {
	if !s.table.InRange(id) {
		return nil, model.ErrInvalidID
	}
	if s.table.Has(id) {
		return nil, model.ErrAlreadyInitialized
	}
	if value < 0 {
		return nil, model.ErrNegativeValue
	}
	sem := model.NewSemaphore(id, value)
	if err := s.table.Save(ctx, sem); err != nil {
		return nil, err
	}
	s.logger.Debug("semaphore created", "id", id, "value", value)
	return sem.Clone(), nil
}

// P decrements the semaphore; below zero the running process blocks on it.
func (s *Service) P(ctx context.Context, id int) (*Outcome, error) {
	sem, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	running, ok := s.scheduler.Running()
	if !ok {
		return nil, model.ErrNoRunningProcess
	}
	outcome := &Outcome{}
	sem.Value--
	if sem.Value < 0 {
		sem.Enqueue(running.PID)
		blocked, err := s.scheduler.Block(ctx, model.StateBlockedSem, id)
		if err != nil {
			sem.Withdraw(running.PID)
			sem.Value++
			return nil, err
		}
		outcome.Blocked = blocked.Clone()
		s.logger.Debug("process blocked on semaphore", "id", id, "pid", blocked.PID, "value", sem.Value)
	}
	if err = s.table.Save(ctx, sem); err != nil {
		return nil, err
	}
	outcome.Semaphore = sem.Clone()
	return outcome, nil
}

// V increments the semaphore and wakes its oldest waiter while the value is
// not positive. It never changes the running process.
func (s *Service) V(ctx context.Context, id int) (*Outcome, error) {
	sem, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	outcome := &Outcome{}
	sem.Value++
	if sem.Value <= 0 {
		pid, ok := sem.Dequeue()
		if !ok {
			sem.Value--
			return nil, fmt.Errorf("semaphore %d: value %d with no waiters", id, sem.Value)
		}
		woken, err := s.scheduler.Wake(ctx, pid)
		if err != nil {
			sem.Waiters = append([]int{pid}, sem.Waiters...)
			sem.Value--
			return nil, err
		}
		outcome.Woken = woken.Clone()
		s.logger.Debug("process woken by semaphore", "id", id, "pid", pid, "value", sem.Value)
	}
	if err = s.table.Save(ctx, sem); err != nil {
		return nil, err
	}
	outcome.Semaphore = sem.Clone()
	return outcome, nil
}

// Release withdraws a waiter leaving its semaphore without a V, restoring the
// count it took.
func (s *Service) Release(ctx context.Context, process *model.Process) error {
	if process.Semaphore == model.NoPID {
		return nil
	}
	sem, err := s.table.Load(ctx, process.Semaphore)
	if err != nil {
		return fmt.Errorf("failed to release pid %d from semaphore %d: %w", process.PID, process.Semaphore, err)
	}
	if sem.Withdraw(process.PID) {
		sem.Value++
		s.logger.Debug("process released from semaphore", "id", sem.ID, "pid", process.PID, "value", sem.Value)
	}
	return s.table.Save(ctx, sem)
}

// Semaphore returns a copy of an initialized semaphore.
func (s *Service) Semaphore(ctx context.Context, id int) (*model.Semaphore, error) {
	sem, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return sem.Clone(), nil
}

// List returns copies of every initialized semaphore ordered by id.
func (s *Service) List(ctx context.Context) ([]*model.Semaphore, error) {
	items, err := s.table.List(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]*model.Semaphore, 0, len(items))
	for _, item := range items {
		ret = append(ret, item.Clone())
	}
	return ret, nil
}

func (s *Service) load(ctx context.Context, id int) (*model.Semaphore, error) {
	sem, err := s.table.Load(ctx, id)
	switch {
	case errors.Is(err, dao.ErrInvalidID):
		return nil, model.ErrInvalidID
	case errors.Is(err, dao.ErrNotFound):
		return nil, model.ErrNotInitialized
	case err != nil:
		return nil, err
	}
	return sem, nil
}

// New creates the semaphore service and registers it as the scheduler's
// releaser.
func New(table *memory.Service, sched *scheduler.Service, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{table: table, scheduler: sched, logger: log}
	sched.SetReleaser(s)
	return s
}
