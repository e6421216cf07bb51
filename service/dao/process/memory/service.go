package memory

import (
	"context"
	"sort"

	"github.com/viant/procsim/model"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/dao/criteria"
)

// Service is the process table: an arena of process records keyed by PID. It
// also allocates PIDs, which are handed out in increasing order and never
// reused.
type Service struct {
	processes map[int]*model.Process
	nextPID   int
}

var _ dao.Service[int, model.Process] = (*Service)(nil)

// Allocate reserves the next PID.
func (s *Service) Allocate() int {
	pid := s.nextPID
	s.nextPID++
	return pid
}

// NextPID returns the PID the next Allocate call will return.
func (s *Service) NextPID() int {
	return s.nextPID
}

// IsAllocated returns true if pid has ever been handed out, whether or not the
// process still exists.
func (s *Service) IsAllocated(pid int) bool {
	return pid >= 0 && pid < s.nextPID
}

func (s *Service) Save(_ context.Context, p *model.Process) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	if !s.IsAllocated(p.PID) {
		return dao.ErrInvalidID
	}
	s.processes[p.PID] = p
	return nil
}

func (s *Service) Load(_ context.Context, pid int) (*model.Process, error) {
	if !s.IsAllocated(pid) {
		return nil, dao.ErrInvalidID
	}
	p, ok := s.processes[pid]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return p, nil
}

func (s *Service) Delete(_ context.Context, pid int) error {
	if !s.IsAllocated(pid) {
		return dao.ErrInvalidID
	}
	if _, ok := s.processes[pid]; !ok {
		return dao.ErrNotFound
	}
	delete(s.processes, pid)
	return nil
}

// List returns live processes ordered by PID, filtered by the optional State
// and Priority parameters.
func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*model.Process, error) {
	out := make([]*model.Process, 0, len(s.processes))
	for _, p := range s.processes {
		if !criteria.FilterByState(p.State, parameters) || !criteria.FilterByPriority(p.Priority, parameters) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out, nil
}

// Count returns the number of live processes.
func (s *Service) Count() int {
	return len(s.processes)
}

func New() *Service {
	return &Service{processes: map[int]*model.Process{}}
}
