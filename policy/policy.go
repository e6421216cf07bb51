package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/procsim/model"
)

// Delivery modes.
const (
	// ModeBlocked delivers to a target blocked for any reason.
	ModeBlocked = "blocked"
	// ModeRendezvous delivers only to a target waiting in Receive.
	ModeRendezvous = "rendezvous"
)

// Policy controls message delivery. A nil *Policy behaves as ModeBlocked.
type Policy struct {
	Mode string
}

// Config is the serialisable form of a Policy.
type Config struct {
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// ToConfig converts a runtime Policy into a Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{Mode: p.Mode}
}

// Parse returns a policy for the named mode.
func Parse(mode string) (*Policy, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	switch normalized {
	case "":
		return &Policy{Mode: ModeBlocked}, nil
	case ModeBlocked, ModeRendezvous:
		return &Policy{Mode: normalized}, nil
	}
	return nil, fmt.Errorf("unsupported delivery mode: %q", mode)
}

// IsRendezvous reports whether delivery requires a waiting receiver.
func (p *Policy) IsRendezvous() bool {
	return p != nil && p.Mode == ModeRendezvous
}

// CanDeliver reports whether a message may be handed directly to a target
// in the given state.
func (p *Policy) CanDeliver(target model.State) bool {
	if p.IsRendezvous() {
		return target == model.StateBlockedReceive
	}
	return target.IsBlocked()
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy carried by ctx.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
