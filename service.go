package procsim

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/procsim/internal/logger"
	"github.com/viant/procsim/model"
	"github.com/viant/procsim/policy"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/message"
	fsqueue "github.com/viant/procsim/service/messaging/fs"
	"github.com/viant/procsim/service/scheduler"
	"github.com/viant/procsim/service/semaphore"
	"github.com/viant/procsim/tracing"
)

// Version is reported as the tracing service version.
const Version = "0.1.0"

// Report is the full system snapshot returned by TotalInfo.
type Report struct {
	*scheduler.Info
	Semaphores []*model.Semaphore `json:"semaphores"`
	Mailbox    []model.Message    `json:"mailbox"`
	Progress   *progress.Progress `json:"progress"`
	Policy     *policy.Config     `json:"policy"`
}

// Service is the simulator facade. Every operation, including the run
// selection it triggers, completes under one lock before the next starts.
type Service struct {
	config           *Config
	policy           *policy.Policy
	logger           *slog.Logger
	events           *event.Publisher[event.Transition]
	fs               afs.Service
	progressListener func(progress.Progress)
	runtime          *Runtime
	mux              sync.Mutex
	shutdown         bool
	initErrs         []error
}

// Create starts a process at the given priority.
func (s *Service) Create(ctx context.Context, priority model.Priority) (*model.Process, error) {
	return call(ctx, s, "Create", map[string]string{"priority": priority.String()}, func(ctx context.Context) (*model.Process, error) {
		process, err := s.runtime.scheduler.Create(ctx, priority)
		return process.Clone(), err
	})
}

// Fork copies the running process.
func (s *Service) Fork(ctx context.Context) (*model.Process, error) {
	return call(ctx, s, "Fork", nil, func(ctx context.Context) (*model.Process, error) {
		process, err := s.runtime.scheduler.Fork(ctx)
		return process.Clone(), err
	})
}

// Kill terminates pid. Killing init on an otherwise empty system returns
// model.ErrShutdown; every later call is rejected with it too.
func (s *Service) Kill(ctx context.Context, pid int) (*model.Process, error) {
	return call(ctx, s, "Kill", pidAttr(pid), func(ctx context.Context) (*model.Process, error) {
		process, err := s.runtime.scheduler.Kill(ctx, pid)
		return process.Clone(), err
	})
}

// Exit terminates the running process.
func (s *Service) Exit(ctx context.Context) (*model.Process, error) {
	return call(ctx, s, "Exit", nil, func(ctx context.Context) (*model.Process, error) {
		process, err := s.runtime.scheduler.Exit(ctx)
		return process.Clone(), err
	})
}

// Quantum expires the running process's time slice and returns the newly
// selected process, or nil when every process is blocked.
func (s *Service) Quantum(ctx context.Context) (*model.Process, error) {
	return call(ctx, s, "Quantum", nil, func(ctx context.Context) (*model.Process, error) {
		process, err := s.runtime.scheduler.Quantum(ctx)
		return process.Clone(), err
	})
}

// NewSemaphore initializes semaphore id.
func (s *Service) NewSemaphore(ctx context.Context, id, value int) (*model.Semaphore, error) {
	attrs := map[string]string{"semaphore": strconv.Itoa(id), "value": strconv.Itoa(value)}
	return call(ctx, s, "NewSemaphore", attrs, func(ctx context.Context) (*model.Semaphore, error) {
		return s.runtime.semaphores.NewSemaphore(ctx, id, value)
	})
}

// P decrements semaphore id, blocking the running process below zero.
func (s *Service) P(ctx context.Context, id int) (*semaphore.Outcome, error) {
	return call(ctx, s, "P", map[string]string{"semaphore": strconv.Itoa(id)}, func(ctx context.Context) (*semaphore.Outcome, error) {
		return s.runtime.semaphores.P(ctx, id)
	})
}

// V increments semaphore id, waking its oldest waiter when one exists.
func (s *Service) V(ctx context.Context, id int) (*semaphore.Outcome, error) {
	return call(ctx, s, "V", map[string]string{"semaphore": strconv.Itoa(id)}, func(ctx context.Context) (*semaphore.Outcome, error) {
		return s.runtime.semaphores.V(ctx, id)
	})
}

// Send sends text from the running process to pid and blocks the sender.
// A policy embedded with policy.WithPolicy overrides the configured one for
// this call.
func (s *Service) Send(ctx context.Context, pid int, text string) (*message.Outcome, error) {
	return call(ctx, s, "Send", pidAttr(pid), func(ctx context.Context) (*message.Outcome, error) {
		return s.runtime.messages.Send(ctx, pid, text)
	})
}

// Receive consumes the running process's pending message or blocks it.
func (s *Service) Receive(ctx context.Context) (*message.Outcome, error) {
	return call(ctx, s, "Receive", nil, func(ctx context.Context) (*message.Outcome, error) {
		return s.runtime.messages.Receive(ctx)
	})
}

// Reply unblocks pid, which must be waiting on Send.
func (s *Service) Reply(ctx context.Context, pid int, text string) (*message.Outcome, error) {
	return call(ctx, s, "Reply", pidAttr(pid), func(ctx context.Context) (*message.Outcome, error) {
		return s.runtime.messages.Reply(ctx, pid, text)
	})
}

// ProcInfo returns a copy of the process record.
func (s *Service) ProcInfo(ctx context.Context, pid int) (*model.Process, error) {
	return call(ctx, s, "ProcInfo", pidAttr(pid), func(ctx context.Context) (*model.Process, error) {
		return s.runtime.scheduler.ProcInfo(ctx, pid)
	})
}

// TotalInfo returns queues, semaphores, the mailbox and counters.
func (s *Service) TotalInfo(ctx context.Context) (*Report, error) {
	return call(ctx, s, "TotalInfo", nil, func(ctx context.Context) (*Report, error) {
		semaphores, err := s.runtime.semaphores.List(ctx)
		if err != nil {
			return nil, err
		}
		counters := s.runtime.tracker.Snapshot()
		return &Report{
			Info:       s.runtime.scheduler.TotalInfo(),
			Semaphores: semaphores,
			Mailbox:    s.runtime.messages.Pending(),
			Progress:   &counters,
			Policy:     policy.ToConfig(policy.FromContext(ctx)),
		}, nil
	})
}

// Events drains the transition journal; it is empty unless WithJournal,
// WithEventQueue or journal.url was used.
func (s *Service) Events(ctx context.Context) ([]*event.Event[event.Transition], error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.events.Drain(ctx)
}

// ConsumeEvents passes pending journal events to handler, oldest first. An
// event the handler rejects stays in the journal for a later attempt until
// journal.maxRetries is exceeded, after which it is dead-lettered.
func (s *Service) ConsumeEvents(ctx context.Context, handler func(event *event.Event[event.Transition]) error) (int, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.events.Process(ctx, handler)
}

// IsShutdown returns true once init has been killed.
func (s *Service) IsShutdown() bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.shutdown
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Policy returns the effective delivery policy
func (s *Service) Policy() *policy.Policy {
	return s.policy
}

// Runtime returns the wired components; callers must not use it
// concurrently with the Service.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

func call[T any](ctx context.Context, s *Service, op string, attrs map[string]string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := tracing.StartSpan(ctx, "procsim."+op, "INTERNAL")
	span.WithAttributes(attrs)
	ctx = progress.WithTracker(ctx, s.runtime.tracker)
	if policy.FromContext(ctx) == nil {
		ctx = policy.WithPolicy(ctx, s.policy)
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	var ret T
	var err error
	if s.shutdown {
		err = model.ErrShutdown
	} else {
		ret, err = fn(ctx)
	}
	if running, ok := s.runtime.scheduler.Running(); ok {
		span.WithInt("running", running.PID)
	}

	switch {
	case err == nil:
		s.logger.Debug("operation completed", "op", op)
		tracing.EndSpan(span, nil)
	case errors.Is(err, model.ErrShutdown):
		s.shutdown = true
		s.logger.Info("system shutdown", "op", op)
		tracing.EndSpan(span, nil)
	default:
		s.logger.Info("operation rejected", "op", op, "error", err)
		tracing.EndSpan(span, err)
	}
	return ret, err
}

func pidAttr(pid int) map[string]string {
	return map[string]string{"pid": strconv.Itoa(pid)}
}

func (s *Service) init(ctx context.Context, options []Option) error {
	for _, option := range options {
		option(s)
	}
	if err := errors.Join(s.initErrs...); err != nil {
		return err
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.policy == nil {
		s.policy, _ = policy.Parse(s.config.Messaging.Policy)
	}
	if s.logger == nil {
		s.logger, _ = logger.New(os.Stderr, s.config.Logging.Level)
	}
	if s.events == nil && s.config.Journal.URL != "" {
		queue, err := fsqueue.NewQueue[event.Event[event.Transition]](ctx, s.fs, fsqueue.Config{
			BaseURL:    s.config.Journal.URL,
			MaxRetries: s.config.Journal.MaxRetries,
		})
		if err != nil {
			return err
		}
		s.events = event.NewPublisher[event.Transition](queue)
	}
	if s.config.Tracing.Enabled {
		if err := tracing.Init("procsim", Version, s.config.Tracing.Output); err != nil {
			return err
		}
	}
	var err error
	s.runtime, err = newRuntime(ctx, &runtimeOptions{
		config:   s.config,
		policy:   s.policy,
		logger:   s.logger,
		events:   s.events,
		listener: s.progressListener,
	})
	return err
}

// New creates a simulator with a running init process.
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	if err := ret.init(context.Background(), options); err != nil {
		return nil, err
	}
	return ret, nil
}
