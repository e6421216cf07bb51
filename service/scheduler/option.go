package scheduler

import (
	"log/slog"

	"github.com/viant/procsim/service/event"
)

// Option configures the scheduler
type Option func(s *Service)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEvents publishes every state change to the given journal
func WithEvents(events *event.Publisher[event.Transition]) Option {
	return func(s *Service) {
		s.events = events
	}
}
