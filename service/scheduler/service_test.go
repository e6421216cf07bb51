package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/procsim/model"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/dao/process/memory"
	"github.com/viant/procsim/service/event"
	msgmemory "github.com/viant/procsim/service/messaging/memory"
)

type fakeReleaser struct {
	released  []int
	onRelease func(process *model.Process)
	err       error
}

func (r *fakeReleaser) Release(_ context.Context, process *model.Process) error {
	r.released = append(r.released, process.PID)
	if r.onRelease != nil {
		r.onRelease(process)
	}
	return r.err
}

func newTestService(t *testing.T) (*Service, *event.Publisher[event.Transition], *progress.Progress) {
	t.Helper()
	events := event.NewPublisher[event.Transition](msgmemory.NewQueue[event.Event[event.Transition]](msgmemory.DefaultConfig()))
	tracker := progress.New("test")
	srv := New(memory.New(), WithEvents(events))
	initProcess, err := srv.Create(progress.WithTracker(context.Background(), tracker), model.PriorityInit)
	require.NoError(t, err)
	require.Equal(t, 0, initProcess.PID)
	require.Equal(t, model.StateRunning, initProcess.State)
	return srv, events, tracker
}

func runningPID(srv *Service) int {
	if running, ok := srv.Running(); ok {
		return running.PID
	}
	return model.NoPID
}

// assertMembership checks that every live process sits in exactly one place.
func assertMembership(t *testing.T, srv *Service) {
	t.Helper()
	info := srv.TotalInfo()
	seen := map[int]int{}
	for _, queue := range [][]int{info.High, info.Normal, info.Low, info.Blocked} {
		for _, pid := range queue {
			seen[pid]++
		}
	}
	if info.Running != nil {
		seen[info.Running.PID]++
	}
	for pid, count := range seen {
		assert.Equal(t, 1, count, "pid %d membership", pid)
	}
	live, err := srv.processes.List(context.Background())
	require.NoError(t, err)
	for _, process := range live {
		if process.IsInit() && process.State == model.StateReady {
			assert.Equal(t, 0, seen[process.PID], "ready init is never queued")
			continue
		}
		assert.Equal(t, 1, seen[process.PID], "pid %d placed once", process.PID)
	}
	running, err := srv.processes.List(context.Background(), dao.NewParameter("State", model.StateRunning))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(running), 1)
}

func TestService_QuantumScenario(t *testing.T) {
	ctx := context.Background()
	srv, _, _ := newTestService(t)

	high, err := srv.Create(ctx, model.PriorityHigh)
	require.NoError(t, err)
	low, err := srv.Create(ctx, model.PriorityLow)
	require.NoError(t, err)
	assert.Equal(t, 1, high.PID)
	assert.Equal(t, 2, low.PID)
	assert.Equal(t, []int{1}, srv.TotalInfo().High)
	assert.Equal(t, []int{2}, srv.TotalInfo().Low)
	assert.Equal(t, 0, runningPID(srv))

	running, err := srv.Quantum(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, running.PID)
	initProcess, ok := srv.Init()
	require.True(t, ok)
	assert.Equal(t, model.StateReady, initProcess.State)
	assert.Empty(t, srv.TotalInfo().High)
	assertMembership(t, srv)

	running, err = srv.Quantum(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, running.PID)
	assert.Equal(t, model.StateRunning, running.State)
	info := srv.TotalInfo()
	assert.Empty(t, info.High)
	assert.Equal(t, []int{2}, info.Low)
	assertMembership(t, srv)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		description string
		priority    model.Priority
		expectErr   error
		expectPID   int
	}{
		{description: "high", priority: model.PriorityHigh, expectPID: 1},
		{description: "normal", priority: model.PriorityNormal, expectPID: 1},
		{description: "low", priority: model.PriorityLow, expectPID: 1},
		{description: "second init", priority: model.PriorityInit, expectErr: model.ErrInvalidPriority},
		{description: "negative", priority: model.Priority(-1), expectErr: model.ErrInvalidPriority},
		{description: "out of range", priority: model.Priority(4), expectErr: model.ErrInvalidPriority},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			srv, _, _ := newTestService(t)
			process, err := srv.Create(ctx, testCase.priority)
			if testCase.expectErr != nil {
				assert.ErrorIs(t, err, testCase.expectErr)
				assert.ErrorIs(t, err, model.ErrInvalidArgument)
				assert.Equal(t, 1, srv.TotalInfo().NextPID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expectPID, process.PID)
			assert.Equal(t, model.StateReady, process.State)
			assert.Equal(t, []int{process.PID}, srv.TotalInfo().Ready(testCase.priority))
		})
	}
}

func TestService_SelectionOrder(t *testing.T) {
	ctx := context.Background()
	srv, _, _ := newTestService(t)
	for _, priority := range []model.Priority{model.PriorityLow, model.PriorityNormal, model.PriorityHigh, model.PriorityHigh} {
		_, err := srv.Create(ctx, priority)
		require.NoError(t, err)
	}

	var order []int
	for i := 0; i < 3; i++ {
		running, err := srv.Quantum(ctx)
		require.NoError(t, err)
		order = append(order, running.PID)
		assertMembership(t, srv)
	}
	assert.Equal(t, []int{3, 4, 3}, order)

	order = order[:0]
	for i := 0; i < 4; i++ {
		_, err := srv.Exit(ctx)
		require.NoError(t, err)
		order = append(order, runningPID(srv))
		assertMembership(t, srv)
	}
	assert.Equal(t, []int{4, 2, 1, 0}, order)
	initProcess, _ := srv.Init()
	assert.Equal(t, model.StateRunning, initProcess.State)
}

func TestService_Fork(t *testing.T) {
	ctx := context.Background()
	srv, _, _ := newTestService(t)

	_, err := srv.Fork(ctx)
	assert.ErrorIs(t, err, model.ErrForkOfInit)
	assert.ErrorIs(t, err, model.ErrPrecondition)

	_, err = srv.Create(ctx, model.PriorityNormal)
	require.NoError(t, err)
	_, err = srv.Quantum(ctx)
	require.NoError(t, err)

	child, err := srv.Fork(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, child.PID)
	assert.Equal(t, 1, child.ParentPID)
	assert.Equal(t, model.PriorityNormal, child.Priority)
	assert.Equal(t, []int{2}, srv.TotalInfo().Normal)
	assertMembership(t, srv)
}

func TestService_Kill(t *testing.T) {
	srv, _, tracker := newTestService(t)
	ctx := progress.WithTracker(context.Background(), tracker)
	for _, priority := range []model.Priority{model.PriorityHigh, model.PriorityNormal, model.PriorityLow} {
		_, err := srv.Create(ctx, priority)
		require.NoError(t, err)
	}

	_, err := srv.Kill(ctx, -1)
	assert.ErrorIs(t, err, model.ErrInvalidPID)
	_, err = srv.Kill(ctx, 4)
	assert.ErrorIs(t, err, model.ErrInvalidPID)

	before := srv.TotalInfo()
	_, err = srv.Kill(ctx, 0)
	assert.ErrorIs(t, err, model.ErrOtherProcessesExist)
	assert.Equal(t, before, srv.TotalInfo())
	initProcess, _ := srv.Init()
	assert.Equal(t, model.StateRunning, initProcess.State)

	killed, err := srv.Kill(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, killed.PID)
	assert.Empty(t, srv.TotalInfo().Normal)

	_, err = srv.Kill(ctx, 2)
	assert.ErrorIs(t, err, model.ErrProcessNotFound)
	assert.ErrorIs(t, err, model.ErrNotFound)

	next, err := srv.Create(ctx, model.PriorityNormal)
	require.NoError(t, err)
	assert.Equal(t, 4, next.PID, "pids are never reused")

	for _, pid := range []int{1, 3, 4} {
		_, err = srv.Kill(ctx, pid)
		require.NoError(t, err)
		assertMembership(t, srv)
	}
	assert.True(t, srv.IsQuiescent())

	initProcess, err = srv.Kill(ctx, 0)
	assert.True(t, errors.Is(err, model.ErrShutdown))
	assert.Equal(t, 0, initProcess.PID)
	_, ok := srv.Running()
	assert.False(t, ok)
	assert.Equal(t, 5, tracker.Snapshot().Terminated)
}

func TestService_KillBlocked(t *testing.T) {
	ctx := context.Background()
	srv, _, _ := newTestService(t)
	releaser := &fakeReleaser{}
	srv.SetReleaser(releaser)

	_, err := srv.Create(ctx, model.PriorityHigh)
	require.NoError(t, err)
	_, err = srv.Quantum(ctx)
	require.NoError(t, err)
	blocked, err := srv.Block(ctx, model.StateBlockedSem, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, blocked.Semaphore)
	assert.Equal(t, 0, runningPID(srv))

	before := srv.TotalInfo()
	_, err = srv.Kill(ctx, 0)
	assert.ErrorIs(t, err, model.ErrOtherProcessesExist)
	assert.Equal(t, before, srv.TotalInfo())

	releaser.onRelease = func(process *model.Process) {
		_, err := srv.ProcInfo(ctx, process.PID)
		assert.ErrorIs(t, err, model.ErrProcessNotFound, "released after termination")
		assert.Empty(t, srv.TotalInfo().Blocked)
	}
	_, err = srv.Kill(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, releaser.released)
	assert.Empty(t, srv.TotalInfo().Blocked)
	_, err = srv.ProcInfo(ctx, 1)
	assert.ErrorIs(t, err, model.ErrProcessNotFound)
}

func TestService_KillReleaseFailure(t *testing.T) {
	ctx := context.Background()
	srv, _, _ := newTestService(t)
	releaseErr := errors.New("semaphore gone")
	srv.SetReleaser(&fakeReleaser{err: releaseErr})

	_, err := srv.Create(ctx, model.PriorityHigh)
	require.NoError(t, err)
	_, err = srv.Quantum(ctx)
	require.NoError(t, err)
	_, err = srv.Block(ctx, model.StateBlockedSem, 0)
	require.NoError(t, err)

	killed, err := srv.Kill(ctx, 1)
	assert.ErrorIs(t, err, releaseErr)
	require.NotNil(t, killed)
	assert.Equal(t, 1, killed.PID)
	assert.Empty(t, srv.TotalInfo().Blocked)
	assertMembership(t, srv)
}

func TestService_BlockAndWake(t *testing.T) {
	ctx := context.Background()
	srv, _, _ := newTestService(t)
	_, err := srv.Create(ctx, model.PriorityHigh)
	require.NoError(t, err)
	_, err = srv.Create(ctx, model.PriorityLow)
	require.NoError(t, err)
	_, err = srv.Quantum(ctx)
	require.NoError(t, err)

	_, err = srv.Block(ctx, model.StateReady, model.NoPID)
	assert.Error(t, err)
	assert.Equal(t, 1, runningPID(srv))

	blocked, err := srv.Block(ctx, model.StateBlockedSend, model.NoPID)
	require.NoError(t, err)
	assert.Equal(t, model.StateBlockedSend, blocked.State)
	assert.Equal(t, 2, runningPID(srv))
	assert.Equal(t, []int{1}, srv.TotalInfo().Blocked)
	assertMembership(t, srv)

	_, err = srv.Wake(ctx, 2)
	assert.ErrorIs(t, err, model.ErrProcessNotFound)

	woken, err := srv.Wake(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StateReady, woken.State)
	assert.Equal(t, []int{1}, srv.TotalInfo().High)
	assert.Equal(t, 2, runningPID(srv), "waking never preempts")
	assertMembership(t, srv)
}

func TestService_Deliver(t *testing.T) {
	ctx := context.Background()
	srv, _, _ := newTestService(t)
	releaser := &fakeReleaser{}
	srv.SetReleaser(releaser)

	_, err := srv.Create(ctx, model.PriorityNormal)
	require.NoError(t, err)
	_, err = srv.Quantum(ctx)
	require.NoError(t, err)
	_, err = srv.Block(ctx, model.StateBlockedSem, 0)
	require.NoError(t, err)

	msg := &model.Message{Sender: 0, Target: 1, Text: "hi"}
	delivered, err := srv.Deliver(ctx, 1, msg)
	require.NoError(t, err)
	assert.Equal(t, model.StateReady, delivered.State)
	assert.Equal(t, model.NoPID, delivered.Semaphore)
	assert.Equal(t, "hi", delivered.Message.Text)
	assert.Equal(t, []int{1}, releaser.released)

	_, err = srv.Deliver(ctx, 1, msg)
	assert.ErrorIs(t, err, model.ErrProcessNotFound)
}

func TestService_EveryoneBlocked(t *testing.T) {
	ctx := context.Background()
	srv, _, _ := newTestService(t)

	_, err := srv.Block(ctx, model.StateBlockedReceive, model.NoPID)
	require.NoError(t, err)
	_, ok := srv.Running()
	assert.False(t, ok)

	running, err := srv.Quantum(ctx)
	require.NoError(t, err)
	assert.Nil(t, running)

	_, err = srv.Fork(ctx)
	assert.ErrorIs(t, err, model.ErrNoRunningProcess)
	_, err = srv.Exit(ctx)
	assert.ErrorIs(t, err, model.ErrNoRunningProcess)
	_, err = srv.Block(ctx, model.StateBlockedSem, 0)
	assert.ErrorIs(t, err, model.ErrNoRunningProcess)

	_, err = srv.Wake(ctx, 0)
	require.NoError(t, err)
	initProcess, _ := srv.Init()
	assert.Equal(t, model.StateReady, initProcess.State)
	assert.Empty(t, srv.TotalInfo().Blocked)
	_, ok = srv.Running()
	assert.False(t, ok)

	running, err = srv.Quantum(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, running.PID)
}

func TestService_ProcInfo(t *testing.T) {
	ctx := context.Background()
	srv, _, _ := newTestService(t)
	_, err := srv.Create(ctx, model.PriorityLow)
	require.NoError(t, err)

	info, err := srv.ProcInfo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityLow, info.Priority)
	assert.Equal(t, model.StateReady, info.State)

	info.State = model.StateRunning
	again, _ := srv.ProcInfo(ctx, 1)
	assert.Equal(t, model.StateReady, again.State, "procinfo returns a copy")

	_, err = srv.ProcInfo(ctx, -1)
	assert.ErrorIs(t, err, model.ErrInvalidPID)
	_, err = srv.ProcInfo(ctx, 2)
	assert.ErrorIs(t, err, model.ErrInvalidPID)
}

func TestService_TotalInfoIsReadOnly(t *testing.T) {
	ctx := context.Background()
	srv, _, _ := newTestService(t)
	for i := 0; i < 3; i++ {
		_, err := srv.Create(ctx, model.PriorityNormal)
		require.NoError(t, err)
	}
	first := srv.TotalInfo()
	second := srv.TotalInfo()
	assert.Equal(t, []int{1, 2, 3}, first.Normal)
	assert.Equal(t, first, second)

	first.Normal[0] = 99
	assert.Equal(t, []int{1, 2, 3}, srv.TotalInfo().Normal)
}

func TestService_Events(t *testing.T) {
	srv, events, tracker := newTestService(t)
	ctx := progress.WithTracker(context.Background(), tracker)
	_, err := events.Drain(ctx)
	require.NoError(t, err)

	_, err = srv.Create(ctx, model.PriorityHigh)
	require.NoError(t, err)
	_, err = srv.Quantum(ctx)
	require.NoError(t, err)

	journal, err := events.Drain(ctx)
	require.NoError(t, err)
	var transitions []event.Transition
	for _, evt := range journal {
		if evt.Context.EventType == event.TypeTransition {
			transitions = append(transitions, evt.Data)
		}
	}
	assert.Equal(t, []event.Transition{
		{From: string(model.StateRunning), To: string(model.StateReady)},
		{From: string(model.StateReady), To: string(model.StateRunning)},
	}, transitions)
	assert.Equal(t, 2, tracker.Snapshot().Created)
	assert.Equal(t, 2, tracker.Snapshot().Switches)
}
