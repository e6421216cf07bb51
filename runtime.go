package procsim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viant/procsim/internal/idgen"
	"github.com/viant/procsim/model"
	"github.com/viant/procsim/policy"
	"github.com/viant/procsim/progress"
	pmemory "github.com/viant/procsim/service/dao/process/memory"
	smemory "github.com/viant/procsim/service/dao/semaphore/memory"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/message"
	mmemory "github.com/viant/procsim/service/messaging/memory"
	"github.com/viant/procsim/service/scheduler"
	"github.com/viant/procsim/service/semaphore"
)

// Runtime holds the wired simulator components. It is not safe for
// concurrent use on its own; Service serializes access.
type Runtime struct {
	processes  *pmemory.Service
	scheduler  *scheduler.Service
	semaphores *semaphore.Service
	messages   *message.Service
	tracker    *progress.Progress
}

// Scheduler returns the scheduler aggregate
func (r *Runtime) Scheduler() *scheduler.Service {
	return r.scheduler
}

// Semaphores returns the semaphore service
func (r *Runtime) Semaphores() *semaphore.Service {
	return r.semaphores
}

// Messages returns the message service
func (r *Runtime) Messages() *message.Service {
	return r.messages
}

// Progress returns the session counters
func (r *Runtime) Progress() *progress.Progress {
	return r.tracker
}

type runtimeOptions struct {
	config   *Config
	policy   *policy.Policy
	logger   *slog.Logger
	events   *event.Publisher[event.Transition]
	listener func(progress.Progress)
}

// newRuntime wires the components and starts the init process.
func newRuntime(ctx context.Context, options *runtimeOptions) (*Runtime, error) {
	tracker := progress.New(idgen.New())
	tracker.OnChange(options.listener)
	ctx = progress.WithTracker(ctx, tracker)
	processes := pmemory.New()
	sched := scheduler.New(processes,
		scheduler.WithLogger(options.logger),
		scheduler.WithEvents(options.events))

	semaphores := semaphore.New(smemory.New(options.config.Scheduler.Semaphores), sched, options.logger)

	mailboxConfig := mmemory.DefaultConfig()
	mailboxConfig.QueueBuffer = options.config.Messaging.MailboxBuffer
	messages := message.New(sched,
		message.WithPolicy(options.policy),
		message.WithMaxLength(options.config.Messaging.MaxLength),
		message.WithMailbox(mmemory.NewQueue[model.Message](mailboxConfig)),
		message.WithEvents(options.events),
		message.WithLogger(options.logger))

	if _, err := sched.Create(ctx, model.PriorityInit); err != nil {
		return nil, fmt.Errorf("failed to create init process: %w", err)
	}
	return &Runtime{
		processes:  processes,
		scheduler:  sched,
		semaphores: semaphores,
		messages:   messages,
		tracker:    tracker,
	}, nil
}
