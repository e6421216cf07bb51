package message

import (
	"log/slog"

	"github.com/viant/procsim/internal/logger"
	"github.com/viant/procsim/model"
	"github.com/viant/procsim/policy"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/messaging/memory"
	"github.com/viant/procsim/service/scheduler"
)

// Option configures the message service
type Option func(s *Service)

// WithPolicy sets the delivery policy
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithMaxLength bounds message text, in characters
func WithMaxLength(maxLength int) Option {
	return func(s *Service) {
		if maxLength > 0 {
			s.maxLength = maxLength
		}
	}
}

// WithMailbox replaces the default unbounded mailbox
func WithMailbox(mailbox *memory.Queue[model.Message]) Option {
	return func(s *Service) {
		if mailbox != nil {
			s.mailbox = mailbox
		}
	}
}

// WithEvents publishes sent and delivered messages to the given journal
func WithEvents(events *event.Publisher[event.Transition]) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a message service
func New(sched *scheduler.Service, opts ...Option) *Service {
	s := &Service{
		scheduler: sched,
		mailbox:   memory.NewQueue[model.Message](memory.DefaultConfig()),
		policy:    &policy.Policy{Mode: policy.ModeBlocked},
		maxLength: model.DefaultMaxMessageLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}
	return s
}
