package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the scheduler,
// semaphore or message services.
type Delta struct {
	Created    int
	Terminated int
	Switches   int
	Blocked    int
	Woken      int
	Sent       int
	Delivered  int
	Replied    int
}

// Progress keeps aggregated counters for a simulator session. It is safe
// for concurrent use.
type Progress struct {
	Session   string
	StartedAt time.Time

	Created    int
	Terminated int
	Switches   int
	Blocked    int
	Woken      int
	Sent       int
	Delivered  int
	Replied    int

	sync.Mutex
	onChange func(Progress)
}

// Update applies the supplied delta. The onChange callback, if any, is
// invoked with a copy outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.Lock()
	p.Created += d.Created
	p.Terminated += d.Terminated
	p.Switches += d.Switches
	p.Blocked += d.Blocked
	p.Woken += d.Woken
	p.Sent += d.Sent
	p.Delivered += d.Delivered
	p.Replied += d.Replied

	snapshot := p.copy()
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return p.copy()
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables it.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

func (p *Progress) copy() Progress {
	return Progress{
		Session:    p.Session,
		StartedAt:  p.StartedAt,
		Created:    p.Created,
		Terminated: p.Terminated,
		Switches:   p.Switches,
		Blocked:    p.Blocked,
		Woken:      p.Woken,
		Sent:       p.Sent,
		Delivered:  p.Delivered,
		Replied:    p.Replied,
	}
}

// New creates a tracker for the given session.
func New(session string) *Progress {
	return &Progress{Session: session, StartedAt: time.Now()}
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds the tracker in a derived context.
func WithTracker(ctx context.Context, tracker *Progress) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, trackerKey, tracker)
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies the delta to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
