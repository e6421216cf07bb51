package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/internal/list"
	"github.com/viant/procsim/internal/logger"
	"github.com/viant/procsim/model"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/dao/process/memory"
	"github.com/viant/procsim/service/event"
)

const (
	opCreate  = "create"
	opFork    = "fork"
	opKill    = "kill"
	opQuantum = "quantum"
	opBlock   = "block"
	opWake    = "wake"
	opDeliver = "deliver"
)

// Releaser withdraws a blocked process from whatever it waits on when it
// leaves the blocked set for another reason (kill, message delivery).
type Releaser interface {
	Release(ctx context.Context, process *model.Process) error
}

// Service is the scheduler state aggregate. It is not safe for concurrent
// use; callers serialize operations.
type Service struct {
	processes *memory.Service
	ready     map[model.Priority]*list.List[int]
	blocked   *list.List[int]
	running   int
	initPID   int
	releaser  Releaser
	events    *event.Publisher[event.Transition]
	logger    *slog.Logger
}

// SetReleaser registers the releaser consulted when a semaphore waiter leaves
// the blocked set without a V.
func (s *Service) SetReleaser(releaser Releaser) {
	s.releaser = releaser
}

// Create allocates a ready process on its priority's queue. The first init
// process takes the running slot when it is empty.
func (s *Service) Create(ctx context.Context, priority model.Priority) (*model.Process, error) {
	if !priority.IsValid() || (priority == model.PriorityInit && s.initPID != model.NoPID) {
		return nil, model.ErrInvalidPriority
	}
	process, err := s.newProcess(ctx, priority)
	if err != nil {
		return nil, err
	}
	if priority == model.PriorityInit {
		s.initPID = process.PID
		if s.running == model.NoPID {
			if err = s.dispatch(ctx, process, opCreate); err != nil {
				return nil, err
			}
		}
	} else {
		s.enqueue(process)
	}
	return process, nil
}

// Fork creates a copy of the running process with the same priority.
func (s *Service) Fork(ctx context.Context) (*model.Process, error) {
	parent, ok := s.Running()
	if !ok {
		return nil, model.ErrNoRunningProcess
	}
	if parent.IsInit() {
		return nil, model.ErrForkOfInit
	}
	process, err := s.newProcess(ctx, parent.Priority)
	if err != nil {
		return nil, err
	}
	process.ParentPID = parent.PID
	s.enqueue(process)
	return process, nil
}

func (s *Service) newProcess(ctx context.Context, priority model.Priority) (*model.Process, error) {
	process := model.NewProcess(s.processes.Allocate(), priority, clock.Now())
	if err := s.processes.Save(ctx, process); err != nil {
		return nil, fmt.Errorf("failed to save process %d: %w", process.PID, err)
	}
	s.publish(ctx, process.PID, event.TypeCreated, opCreate, "", process.State)
	progress.UpdateCtx(ctx, progress.Delta{Created: 1})
	s.logger.Debug("process created", "pid", process.PID, "priority", process.Priority)
	return process, nil
}

// Kill removes a process from the system. Killing init succeeds only when
// every ready queue and the blocked set are empty, and then returns
// model.ErrShutdown together with the init process.
func (s *Service) Kill(ctx context.Context, pid int) (*model.Process, error) {
	if s.initPID != model.NoPID && pid == s.initPID {
		return s.killInit(ctx)
	}
	if !s.processes.IsAllocated(pid) {
		return nil, model.ErrInvalidPID
	}
	if pid == s.running {
		process, err := s.processes.Load(ctx, pid)
		if err != nil {
			return nil, err
		}
		if err = s.terminate(ctx, process); err != nil {
			return nil, err
		}
		s.running = model.NoPID
		return process, s.selectNext(ctx, opKill)
	}

	queue, ok := s.locate(pid)
	if !ok {
		return nil, model.ErrProcessNotFound
	}
	process, err := s.processes.Load(ctx, pid)
	if err != nil {
		return nil, model.ErrProcessNotFound
	}
	if err = s.terminate(ctx, process); err != nil {
		return nil, err
	}
	if _, ok = queue.Search(matchPID(pid)); ok {
		queue.Remove()
	}
	if err = s.release(ctx, process); err != nil {
		return process, fmt.Errorf("pid %d killed but not released: %w", pid, err)
	}
	return process, nil
}

func (s *Service) killInit(ctx context.Context) (*model.Process, error) {
	if !s.IsQuiescent() {
		return nil, model.ErrOtherProcessesExist
	}
	initProcess, err := s.processes.Load(ctx, s.initPID)
	if err != nil {
		return nil, err
	}
	if s.running == initProcess.PID {
		s.running = model.NoPID
	}
	if err = s.terminate(ctx, initProcess); err != nil {
		return nil, err
	}
	s.initPID = model.NoPID
	s.logger.Info("init killed on an empty system")
	return initProcess, model.ErrShutdown
}

// Exit kills the running process.
func (s *Service) Exit(ctx context.Context) (*model.Process, error) {
	process, ok := s.Running()
	if !ok {
		return nil, model.ErrNoRunningProcess
	}
	return s.Kill(ctx, process.PID)
}

// Quantum preempts the running process and selects the next one. A running
// init process is marked ready without being queued.
func (s *Service) Quantum(ctx context.Context) (*model.Process, error) {
	if current, ok := s.Running(); ok {
		if err := s.transition(ctx, current, model.StateReady, opQuantum); err != nil {
			return nil, err
		}
		s.running = model.NoPID
		if !current.IsInit() {
			s.enqueue(current)
		}
	}
	if err := s.selectNext(ctx, opQuantum); err != nil {
		return nil, err
	}
	running, _ := s.Running()
	return running, nil
}

// Block moves the running process into the blocked set with the given
// blocked state and selects the next process to run. semaphore is recorded
// for model.StateBlockedSem.
func (s *Service) Block(ctx context.Context, to model.State, semaphore int) (*model.Process, error) {
	process, ok := s.Running()
	if !ok {
		return nil, model.ErrNoRunningProcess
	}
	if !to.IsBlocked() {
		return nil, fmt.Errorf("pid %d: %s is not a blocked state", process.PID, to)
	}
	if err := s.transition(ctx, process, to, opBlock); err != nil {
		return nil, err
	}
	if to == model.StateBlockedSem {
		process.Semaphore = semaphore
	}
	s.blocked.Append(process.PID)
	s.running = model.NoPID
	progress.UpdateCtx(ctx, progress.Delta{Blocked: 1})
	return process, s.selectNext(ctx, opBlock)
}

// Wake moves a blocked process back to its ready queue. It never changes the
// running slot.
func (s *Service) Wake(ctx context.Context, pid int) (*model.Process, error) {
	process, ok := s.Blocked(pid)
	if !ok {
		return nil, model.ErrProcessNotFound
	}
	return process, s.wake(ctx, process, opWake)
}

// Deliver stores msg in a blocked process's pending slot and wakes it. A
// semaphore waiter is released from its semaphore first.
func (s *Service) Deliver(ctx context.Context, pid int, msg *model.Message) (*model.Process, error) {
	process, ok := s.Blocked(pid)
	if !ok {
		return nil, model.ErrProcessNotFound
	}
	if err := s.release(ctx, process); err != nil {
		return nil, err
	}
	process.Deliver(msg)
	return process, s.wake(ctx, process, opDeliver)
}

func (s *Service) wake(ctx context.Context, process *model.Process, op string) error {
	if _, ok := s.blocked.First(); !ok {
		return model.ErrProcessNotFound
	}
	if _, ok := s.blocked.Search(matchPID(process.PID)); !ok {
		return model.ErrProcessNotFound
	}
	if err := s.transition(ctx, process, model.StateReady, op); err != nil {
		return err
	}
	s.blocked.Remove()
	if !process.IsInit() {
		s.enqueue(process)
	}
	progress.UpdateCtx(ctx, progress.Delta{Woken: 1})
	return nil
}

func (s *Service) release(ctx context.Context, process *model.Process) error {
	if process.State != model.StateBlockedSem || s.releaser == nil {
		return nil
	}
	return s.releaser.Release(ctx, process)
}

// Running returns the running process. The returned process is owned by the
// scheduler.
func (s *Service) Running() (*model.Process, bool) {
	if s.running == model.NoPID {
		return nil, false
	}
	process, err := s.processes.Load(context.Background(), s.running)
	if err != nil {
		return nil, false
	}
	return process, true
}

// Init returns the init process, if created.
func (s *Service) Init() (*model.Process, bool) {
	if s.initPID == model.NoPID {
		return nil, false
	}
	process, err := s.processes.Load(context.Background(), s.initPID)
	if err != nil {
		return nil, false
	}
	return process, true
}

// Blocked searches the blocked set for pid.
func (s *Service) Blocked(pid int) (*model.Process, bool) {
	if _, ok := s.blocked.First(); !ok {
		return nil, false
	}
	if _, ok := s.blocked.Search(matchPID(pid)); !ok {
		return nil, false
	}
	process, err := s.processes.Load(context.Background(), pid)
	if err != nil {
		return nil, false
	}
	return process, true
}

// IsValidPID returns true if pid has been allocated, live or not.
func (s *Service) IsValidPID(pid int) bool {
	return s.processes.IsAllocated(pid)
}

// IsQuiescent returns true when every ready queue and the blocked set are
// empty.
func (s *Service) IsQuiescent() bool {
	for _, priority := range model.ReadyPriorities {
		if s.ready[priority].Count() > 0 {
			return false
		}
	}
	return s.blocked.Count() == 0
}

// ProcInfo returns a copy of the process record.
func (s *Service) ProcInfo(ctx context.Context, pid int) (*model.Process, error) {
	if !s.processes.IsAllocated(pid) {
		return nil, model.ErrInvalidPID
	}
	process, err := s.processes.Load(ctx, pid)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, model.ErrProcessNotFound
		}
		return nil, err
	}
	return process.Clone(), nil
}

// TotalInfo returns the queue contents in FIFO order without disturbing them.
func (s *Service) TotalInfo() *Info {
	info := &Info{
		High:    s.ready[model.PriorityHigh].Items(),
		Normal:  s.ready[model.PriorityNormal].Items(),
		Low:     s.ready[model.PriorityLow].Items(),
		Blocked: s.blocked.Items(),
		NextPID: s.processes.NextPID(),
	}
	if running, ok := s.Running(); ok {
		info.Running = running.Clone()
	}
	if initProcess, ok := s.Init(); ok {
		info.Init = initProcess.Clone()
	}
	return info
}

// selectNext fills the empty running slot: the head of the first non-empty
// queue in priority order, then init if it is not blocked.
func (s *Service) selectNext(ctx context.Context, op string) error {
	for _, priority := range model.ReadyPriorities {
		pid, ok := s.ready[priority].Dequeue()
		if !ok {
			continue
		}
		process, err := s.processes.Load(ctx, pid)
		if err != nil {
			return fmt.Errorf("ready queue %s holds unknown pid %d: %w", priority, pid, err)
		}
		return s.dispatch(ctx, process, op)
	}
	if initProcess, ok := s.Init(); ok && initProcess.State.IsRunnable() {
		return s.dispatch(ctx, initProcess, op)
	}
	s.running = model.NoPID
	s.publish(ctx, model.NoPID, event.TypeIdle, op, "", "")
	s.logger.Debug("no process available to run")
	return nil
}

func (s *Service) dispatch(ctx context.Context, process *model.Process, op string) error {
	if process.State != model.StateRunning {
		if err := s.transition(ctx, process, model.StateRunning, op); err != nil {
			return err
		}
	}
	s.running = process.PID
	progress.UpdateCtx(ctx, progress.Delta{Switches: 1})
	return nil
}

func (s *Service) terminate(ctx context.Context, process *model.Process) error {
	if err := s.processes.Delete(ctx, process.PID); err != nil {
		return err
	}
	s.publish(ctx, process.PID, event.TypeTerminated, opKill, process.State, "")
	progress.UpdateCtx(ctx, progress.Delta{Terminated: 1})
	s.logger.Debug("process terminated", "pid", process.PID)
	return nil
}

func (s *Service) transition(ctx context.Context, process *model.Process, to model.State, op string) error {
	from := process.State
	if err := process.TransitionTo(to); err != nil {
		return err
	}
	s.publish(ctx, process.PID, event.TypeTransition, op, from, to)
	s.logger.Debug("transition", "pid", process.PID, "from", from, "to", to, "op", op)
	return nil
}

func (s *Service) enqueue(process *model.Process) {
	s.ready[process.Priority].Append(process.PID)
}

// locate searches the ready queues then the blocked set, leaving the cursor
// of the returned list on pid.
func (s *Service) locate(pid int) (*list.List[int], bool) {
	queues := []*list.List[int]{
		s.ready[model.PriorityHigh],
		s.ready[model.PriorityNormal],
		s.ready[model.PriorityLow],
		s.blocked,
	}
	for _, queue := range queues {
		if _, ok := queue.First(); !ok {
			continue
		}
		if _, ok := queue.Search(matchPID(pid)); ok {
			return queue, true
		}
	}
	return nil, false
}

func (s *Service) publish(ctx context.Context, pid int, eventType, op string, from, to model.State) {
	if s.events == nil {
		return
	}
	evt := event.NewEvent(&event.Context{PID: pid, EventType: eventType, Operation: op},
		event.Transition{From: string(from), To: string(to)})
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish event", "pid", pid, "type", eventType, "error", err)
	}
}

func matchPID(pid int) func(int) bool {
	return func(candidate int) bool { return candidate == pid }
}

// New creates a scheduler over the process table.
func New(processes *memory.Service, opts ...Option) *Service {
	s := &Service{
		processes: processes,
		ready:     map[model.Priority]*list.List[int]{},
		blocked:   list.New[int](),
		running:   model.NoPID,
		initPID:   model.NoPID,
		logger:    logger.Discard(),
	}
	for _, priority := range model.ReadyPriorities {
		s.ready[priority] = list.New[int]()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
