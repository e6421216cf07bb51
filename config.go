package procsim

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/procsim/internal/logger"
	"github.com/viant/procsim/model"
	"github.com/viant/procsim/policy"
	"github.com/viant/procsim/service/meta"
)

// Config is a serialisable representation of the simulator configuration.
// Fields omitted in a YAML or JSON document keep their DefaultConfig values.
type Config struct {
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Messaging MessagingConfig `json:"messaging" yaml:"messaging"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
}

type SchedulerConfig struct {
	// Semaphores is the number of semaphore slots; ids range over [0, Semaphores).
	Semaphores int `json:"semaphores" yaml:"semaphores"`
}

type MessagingConfig struct {
	MaxLength int    `json:"maxLength" yaml:"maxLength"`
	Policy    string `json:"policy" yaml:"policy"`
	// MailboxBuffer bounds undelivered messages; 0 means unbounded.
	MailboxBuffer int `json:"mailboxBuffer" yaml:"mailboxBuffer"`
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

type TracingConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Output is the trace file; empty writes to stdout.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// JournalConfig persists process transitions. With an empty URL the journal
// is only kept when WithJournal or WithEventQueue is used.
type JournalConfig struct {
	URL        string `json:"url,omitempty" yaml:"url,omitempty"`
	MaxRetries int    `json:"maxRetries" yaml:"maxRetries"`
}

// DefaultConfig returns the classic simulator settings: five semaphores,
// 40 character messages and delivery to any blocked process.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{Semaphores: 5},
		Messaging: MessagingConfig{
			MaxLength: model.DefaultMaxMessageLength,
			Policy:    policy.ModeBlocked,
		},
		Logging: LoggingConfig{Level: "INFO"},
		Journal: JournalConfig{MaxRetries: 3},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Scheduler.Semaphores <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.semaphores must be > 0"))
	}
	if c.Messaging.MaxLength <= 0 {
		errs = append(errs, fmt.Errorf("messaging.maxLength must be > 0"))
	}
	if c.Messaging.MailboxBuffer < 0 {
		errs = append(errs, fmt.Errorf("messaging.mailboxBuffer must be >= 0"))
	}
	if _, err := policy.Parse(c.Messaging.Policy); err != nil {
		errs = append(errs, fmt.Errorf("messaging.policy: %w", err))
	}
	if c.Journal.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("journal.maxRetries must be >= 0"))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML (or JSON) config from any afs supported URL and
// layers it over DefaultConfig. ${env.KEY} expressions are expanded first.
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	cfg := DefaultConfig()
	if err := meta.New(fs).Load(ctx, URL, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return cfg, nil
}
