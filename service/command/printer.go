package command

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/viant/procsim"
	"github.com/viant/procsim/model"
)

// Printer renders command results as console text.
type Printer struct {
	w io.Writer
}

// Print writes the outcome of one command. cmd may be nil when parsing failed.
func (p *Printer) Print(cmd *Command, result *Result, err error) {
	if cmd != nil {
		p.printf("********** %s command issued **********\n", cmd.Kind.Name())
	}
	switch {
	case errors.Is(err, model.ErrShutdown):
		p.println("Killing the INIT process.")
		p.println("No processes running.")
		p.println("Terminating the OS. Goodbye.")
		return
	case err != nil:
		p.printf("ERROR - %v\n", err)
		return
	case result == nil:
		return
	}
	switch {
	case result.Help != "":
		p.print(result.Help)
	case result.Report != nil:
		p.printReport(result.Report)
	case result.Sync != nil:
		p.printSync(cmd, result)
	case result.Message != nil:
		p.printMessage(cmd, result)
	case result.Semaphore != nil:
		p.printf("Semaphore with ID %d and value %d created.\n", result.Semaphore.ID, result.Semaphore.Value)
	case result.Process != nil:
		p.printProcess(cmd, result.Process)
	case cmd != nil && cmd.Kind == KindQuantum:
		p.println("No process is available to run.")
	}
}

func (p *Printer) printProcess(cmd *Command, process *model.Process) {
	kind := KindProcInfo
	if cmd != nil {
		kind = cmd.Kind
	}
	switch kind {
	case KindCreate:
		p.println("Process created successfully.")
		p.printf("PID: %d\n", process.PID)
		if process.IsInit() {
			p.println("Created as the INIT process.")
			return
		}
		p.printf("Added to %s priority (%d) ready queue.\n", process.Priority, int(process.Priority))
	case KindFork:
		p.println("Process forked successfully.")
		p.printf("PID of forked process: %d (parent %d)\n", process.PID, process.ParentPID)
		p.printf("Added to %s priority ready queue.\n", process.Priority)
	case KindKill, KindExit:
		p.printf("Successfully killed process with PID %d\n", process.PID)
	case KindQuantum:
		p.printf("The new running process has PID %d.\n", process.PID)
	default:
		p.printf("Requested info about process with PID %d:\n", process.PID)
		p.printf("The process has priority %s.\n", process.Priority)
		p.printf("The process is currently in the %s state.\n", process.State)
		if process.State == model.StateBlockedSem {
			p.printf("Waiting on semaphore %d.\n", process.Semaphore)
		}
		if process.Message != nil {
			p.printf("Pending %s from PID %d: %s\n", process.Message.Kind, process.Message.Sender, process.Message.Text)
		}
	}
}

func (p *Printer) printSync(cmd *Command, result *Result) {
	outcome := result.Sync
	p.printf("The semaphore value is now %d.\n", outcome.Semaphore.Value)
	if outcome.Blocked != nil {
		p.printf("Blocking the running process (PID %d).\n", outcome.Blocked.PID)
	}
	if outcome.Woken != nil {
		p.printf("Unblocked process PID %d, added to %s priority ready queue.\n", outcome.Woken.PID, outcome.Woken.Priority)
	}
	if outcome.Blocked == nil && outcome.Woken == nil && cmd != nil && cmd.Kind == KindP {
		p.println("The running process will not be blocked.")
	}
}

func (p *Printer) printMessage(cmd *Command, result *Result) {
	outcome := result.Message
	if outcome.Message != nil {
		msg := outcome.Message
		if cmd != nil && cmd.Kind == KindReceive {
			p.printf("Received %s from PID %d: %s\n", msg.Kind, msg.Sender, msg.Text)
		} else {
			p.printf("Sent %s to PID %d: %s\n", msg.Kind, msg.Target, msg.Text)
		}
	}
	if outcome.Delivered != nil {
		p.printf("Delivered to PID %d, now %s.\n", outcome.Delivered.PID, outcome.Delivered.State)
	} else if cmd != nil && cmd.Kind == KindSend {
		p.println("The target is not waiting; the message stays in the mailbox.")
	}
	if outcome.Blocked != nil {
		p.printf("Blocking the running process (PID %d) as %s.\n", outcome.Blocked.PID, outcome.Blocked.State)
	}
}

func (p *Printer) printReport(report *procsim.Report) {
	if report.Info != nil {
		p.printf("High priority processes: %s\n", pidList(report.High))
		p.printf("Normal priority processes: %s\n", pidList(report.Normal))
		p.printf("Low priority processes: %s\n", pidList(report.Low))
		p.printf("Blocked processes: %s\n", pidList(report.Blocked))
		if running := report.Running; running != nil {
			p.printf("Running process - PID: %d, Priority: %s\n", running.PID, running.Priority)
		} else {
			p.println("Running process: NONE")
		}
		if initProcess := report.Init; initProcess != nil {
			p.printf("Init process - PID: %d, State: %s\n", initProcess.PID, initProcess.State)
		}
	}
	for _, sem := range report.Semaphores {
		p.printf("Semaphore %d - value: %d, waiting: %s\n", sem.ID, sem.Value, pidList(sem.Waiters))
	}
	if len(report.Mailbox) > 0 {
		p.printf("Mailbox: %d undelivered\n", len(report.Mailbox))
		for _, msg := range report.Mailbox {
			p.printf("  %d -> %d: %s\n", msg.Sender, msg.Target, msg.Text)
		}
	}
	if report.Progress != nil {
		snapshot := report.Progress.Snapshot()
		p.printf("Created: %d, Terminated: %d, Switches: %d, Sent: %d, Replied: %d\n",
			snapshot.Created, snapshot.Terminated, snapshot.Switches, snapshot.Sent, snapshot.Replied)
	}
}

func pidList(pids []int) string {
	if len(pids) == 0 {
		return "NONE"
	}
	items := make([]string, len(pids))
	for i, pid := range pids {
		items[i] = strconv.Itoa(pid)
	}
	return strings.Join(items, ", ")
}

func (p *Printer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) println(text string) {
	_, _ = io.WriteString(p.w, text+"\n")
}

func (p *Printer) print(text string) {
	_, _ = io.WriteString(p.w, text)
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}
