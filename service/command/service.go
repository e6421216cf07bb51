package command

import (
	"context"
	"fmt"

	"github.com/viant/procsim"
	"github.com/viant/procsim/model"
	"github.com/viant/procsim/service/message"
	"github.com/viant/procsim/service/semaphore"
)

// Simulator is the set of operations commands dispatch to.
type Simulator interface {
	Create(ctx context.Context, priority model.Priority) (*model.Process, error)
	Fork(ctx context.Context) (*model.Process, error)
	Kill(ctx context.Context, pid int) (*model.Process, error)
	Exit(ctx context.Context) (*model.Process, error)
	Quantum(ctx context.Context) (*model.Process, error)
	NewSemaphore(ctx context.Context, id, value int) (*model.Semaphore, error)
	P(ctx context.Context, id int) (*semaphore.Outcome, error)
	V(ctx context.Context, id int) (*semaphore.Outcome, error)
	Send(ctx context.Context, pid int, text string) (*message.Outcome, error)
	Receive(ctx context.Context) (*message.Outcome, error)
	Reply(ctx context.Context, pid int, text string) (*message.Outcome, error)
	ProcInfo(ctx context.Context, pid int) (*model.Process, error)
	TotalInfo(ctx context.Context) (*procsim.Report, error)
}

var _ Simulator = (*procsim.Service)(nil)

// Result carries whatever the dispatched operation returned.
type Result struct {
	Command   *Command
	Process   *model.Process
	Semaphore *model.Semaphore
	Sync      *semaphore.Outcome
	Message   *message.Outcome
	Report    *procsim.Report
	Help      string
}

// Service dispatches commands to a simulator.
type Service struct {
	simulator Simulator
}

// Execute parses and runs one input line.
func (s *Service) Execute(ctx context.Context, line string) (*Result, error) {
	cmd, err := Parse(line)
	if err != nil {
		return nil, err
	}
	return s.Dispatch(ctx, cmd)
}

// Dispatch runs a parsed command. The result is returned even on error so
// callers can report which command failed.
func (s *Service) Dispatch(ctx context.Context, cmd *Command) (*Result, error) {
	result := &Result{Command: cmd}
	var err error
	switch cmd.Kind {
	case KindCreate:
		result.Process, err = s.simulator.Create(ctx, cmd.Priority)
	case KindFork:
		result.Process, err = s.simulator.Fork(ctx)
	case KindKill:
		result.Process, err = s.simulator.Kill(ctx, cmd.Arg(0))
	case KindExit:
		result.Process, err = s.simulator.Exit(ctx)
	case KindQuantum:
		result.Process, err = s.simulator.Quantum(ctx)
	case KindNewSemaphore:
		result.Semaphore, err = s.simulator.NewSemaphore(ctx, cmd.Arg(0), cmd.Arg(1))
	case KindP:
		result.Sync, err = s.simulator.P(ctx, cmd.Arg(0))
	case KindV:
		result.Sync, err = s.simulator.V(ctx, cmd.Arg(0))
	case KindSend:
		result.Message, err = s.simulator.Send(ctx, cmd.Arg(0), cmd.Text)
	case KindReceive:
		result.Message, err = s.simulator.Receive(ctx)
	case KindReply:
		result.Message, err = s.simulator.Reply(ctx, cmd.Arg(0), cmd.Text)
	case KindProcInfo:
		result.Process, err = s.simulator.ProcInfo(ctx, cmd.Arg(0))
	case KindTotalInfo:
		result.Report, err = s.simulator.TotalInfo(ctx)
	case KindHelp:
		result.Help = Usage()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind.String())
	}
	return result, err
}

// New creates a command dispatcher
func New(simulator Simulator) *Service {
	return &Service{simulator: simulator}
}
