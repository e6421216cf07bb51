package procsim

import (
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/procsim/policy"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/messaging"
	"github.com/viant/procsim/service/messaging/memory"
	"github.com/viant/procsim/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures the Service
type Option func(s *Service)

// WithConfig replaces the default configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithPolicy overrides the configured delivery policy
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithLogger sets the structured logger; by default a text logger at the
// configured level writes to stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithEventQueue records every process transition on the supplied queue.
func WithEventQueue(queue messaging.Queue[event.Event[event.Transition]]) Option {
	return func(s *Service) {
		s.events = event.NewPublisher[event.Transition](queue)
	}
}

// WithJournal records every process transition on an in-memory queue that
// Events drains.
func WithJournal() Option {
	return WithEventQueue(memory.NewQueue[event.Event[event.Transition]](memory.DefaultConfig()))
}

// WithProgressListener registers a callback invoked after every counter change.
func WithProgressListener(listener func(progress.Progress)) Option {
	return func(s *Service) {
		s.progressListener = listener
	}
}

// WithTracing configures OpenTelemetry tracing. If outputFile is empty the
// stdout exporter is used. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.initErrs = append(s.initErrs, err)
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.initErrs = append(s.initErrs, err)
		}
	}
}

// WithFS sets the storage used by the persistent journal (journal.url).
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}
