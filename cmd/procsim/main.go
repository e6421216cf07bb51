// Command procsim runs the process scheduler simulator as an interactive
// console. Each input line is one command; see H for the list.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/procsim"
	"github.com/viant/procsim/model"
	"github.com/viant/procsim/policy"
	"github.com/viant/procsim/service/command"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/meta"
	"github.com/viant/procsim/tracing"
)

func main() {
	configURL := flag.String("config", "", "config URL (file, mem, gs, s3 ...)")
	scriptURL := flag.String("script", "", "command script URL replayed before reading stdin")
	mode := flag.String("policy", "", "delivery policy: blocked or rendezvous")
	level := flag.String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	trace := flag.String("trace", "", "write OpenTelemetry spans to this file")
	journal := flag.String("journal", "", "persist process transitions under this URL")
	verbose := flag.Bool("v", false, "print process transitions after each command")
	flag.Parse()

	ctx := context.Background()
	code, err := run(ctx, &settings{
		configURL: *configURL,
		scriptURL: *scriptURL,
		mode:      *mode,
		level:     *level,
		trace:     *trace,
		journal:   *journal,
		verbose:   *verbose,
	}, os.Stdin, os.Stdout)
	if err != nil {
		log.Print(err)
	}
	os.Exit(code)
}

type settings struct {
	configURL string
	scriptURL string
	mode      string
	level     string
	trace     string
	journal   string
	verbose   bool
}

func run(ctx context.Context, settings *settings, in io.Reader, out io.Writer) (int, error) {
	fs := afs.New()
	config := procsim.DefaultConfig()
	if settings.configURL != "" {
		var err error
		if config, err = procsim.LoadConfig(ctx, fs, settings.configURL); err != nil {
			return 1, err
		}
	}
	if settings.mode != "" {
		config.Messaging.Policy = settings.mode
	}
	if settings.level != "" {
		config.Logging.Level = settings.level
	}
	if settings.trace != "" {
		config.Tracing.Enabled = true
		config.Tracing.Output = settings.trace
	}
	if settings.journal != "" {
		config.Journal.URL = settings.journal
	}
	if _, err := policy.Parse(config.Messaging.Policy); err != nil {
		return 2, err
	}

	options := []procsim.Option{procsim.WithConfig(config), procsim.WithFS(fs)}
	if settings.verbose && config.Journal.URL == "" {
		options = append(options, procsim.WithJournal())
	}
	simulator, err := procsim.New(options...)
	if err != nil {
		return 1, err
	}
	defer func() { _ = tracing.Shutdown(ctx) }()

	console := &console{
		simulator: simulator,
		commands:  command.New(simulator),
		printer:   command.NewPrinter(out),
		out:       out,
		verbose:   settings.verbose,
	}
	fmt.Fprintln(out, "********** Welcome **********")
	fmt.Fprintf(out, "Delivery policy: %s, semaphores: %d\n", simulator.Policy().Mode, config.Scheduler.Semaphores)
	fmt.Fprintln(out, "********** Ready for commands **********")

	if settings.scriptURL != "" {
		lines, err := meta.New(fs).Lines(ctx, settings.scriptURL)
		if err != nil {
			return 1, err
		}
		for _, line := range lines {
			fmt.Fprintf(out, "> %s\n", line)
			if console.execute(ctx, line) {
				return 0, nil
			}
		}
	}
	console.replay(ctx, in)
	return 0, nil
}

type console struct {
	simulator *procsim.Service
	commands  *command.Service
	printer   *command.Printer
	out       io.Writer
	verbose   bool
}

// replay executes every line of in and reports whether the system shut down.
func (c *console) replay(ctx context.Context, in io.Reader) bool {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			return false
		}
		if c.execute(ctx, scanner.Text()) {
			return true
		}
	}
}

func (c *console) execute(ctx context.Context, line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	cmd, err := command.Parse(line)
	if err != nil {
		c.printer.Print(nil, nil, err)
		return false
	}
	result, err := c.commands.Dispatch(ctx, cmd)
	c.printer.Print(cmd, result, err)
	if c.verbose {
		if _, err := c.simulator.ConsumeEvents(ctx, c.trace); err != nil {
			log.Printf("failed to print journal: %v", err)
		}
	}
	if errors.Is(err, model.ErrShutdown) {
		return true
	}
	fmt.Fprintln(c.out, "********** Ready for next command **********")
	return false
}

// trace prints one journal entry.
func (c *console) trace(e *event.Event[event.Transition]) error {
	var err error
	switch e.Context.EventType {
	case event.TypeSent, event.TypeDelivered:
		_, err = fmt.Fprintf(c.out, "  [%s] pid %d %s %v %v -> %v\n", e.Context.Operation, e.Context.PID, e.Context.EventType,
			e.Metadata["kind"], e.Metadata["sender"], e.Metadata["target"])
	default:
		_, err = fmt.Fprintf(c.out, "  [%s] pid %d %s -> %s\n", e.Context.Operation, e.Context.PID, e.Data.From, e.Data.To)
	}
	return err
}
