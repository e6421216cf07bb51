package command

import (
	"fmt"
	"strings"

	"github.com/viant/procsim/model"
)

// Kind is the upper-case command letter.
type Kind byte

const (
	KindCreate       Kind = 'C'
	KindFork         Kind = 'F'
	KindKill         Kind = 'K'
	KindExit         Kind = 'E'
	KindQuantum      Kind = 'Q'
	KindNewSemaphore Kind = 'N'
	KindP            Kind = 'P'
	KindV            Kind = 'V'
	KindSend         Kind = 'S'
	KindReceive      Kind = 'R'
	KindReply        Kind = 'Y'
	KindProcInfo     Kind = 'I'
	KindTotalInfo    Kind = 'T'
	KindHelp         Kind = 'H'
)

func (k Kind) String() string {
	return string(rune(k))
}

// Command is a parsed input line.
type Command struct {
	Kind     Kind
	Priority model.Priority
	Args     []int
	Text     string
}

// Arg returns the i-th integer argument.
func (c *Command) Arg(i int) int {
	if i < 0 || i >= len(c.Args) {
		return 0
	}
	return c.Args[i]
}

type spec struct {
	name        string
	usage       string
	description string
	priority    bool
	ints        int
	text        bool
}

// specs lists commands in help order.
var specs = []struct {
	kind Kind
	spec spec
}{
	{KindCreate, spec{name: "Create", usage: "C <priority 0-3>", description: "create a process (0 high, 1 normal, 2 low)", priority: true}},
	{KindFork, spec{name: "Fork", usage: "F", description: "fork the running process"}},
	{KindKill, spec{name: "Kill", usage: "K <pid>", description: "kill a process; K 0 on an empty system exits", ints: 1}},
	{KindExit, spec{name: "Exit", usage: "E", description: "kill the running process"}},
	{KindQuantum, spec{name: "Quantum", usage: "Q", description: "expire the running process's time slice"}},
	{KindNewSemaphore, spec{name: "NewSemaphore", usage: "N <id> <value>", description: "initialize a semaphore", ints: 2}},
	{KindP, spec{name: "P", usage: "P <id>", description: "semaphore P (wait)", ints: 1}},
	{KindV, spec{name: "V", usage: "V <id>", description: "semaphore V (signal)", ints: 1}},
	{KindSend, spec{name: "Send", usage: "S <pid> <text>", description: "send a message and wait for a reply", ints: 1, text: true}},
	{KindReceive, spec{name: "Receive", usage: "R", description: "receive a message, waiting if none is pending"}},
	{KindReply, spec{name: "Reply", usage: "Y <pid> <text>", description: "reply to a process waiting on send", ints: 1, text: true}},
	{KindProcInfo, spec{name: "ProcInfo", usage: "I <pid>", description: "show a process", ints: 1}},
	{KindTotalInfo, spec{name: "TotalInfo", usage: "T", description: "show all queues"}},
	{KindHelp, spec{name: "Help", usage: "H", description: "show this help"}},
}

func lookup(kind Kind) (spec, bool) {
	for _, candidate := range specs {
		if candidate.kind == kind {
			return candidate.spec, true
		}
	}
	return spec{}, false
}

// Usage returns the help text.
func Usage() string {
	builder := strings.Builder{}
	builder.WriteString("Commands (case-insensitive):\n")
	for _, candidate := range specs {
		builder.WriteString(fmt.Sprintf("  %-16s %s\n", candidate.spec.usage, candidate.spec.description))
	}
	return builder.String()
}

// Name returns the operation name, e.g. "Create".
func (k Kind) Name() string {
	if s, ok := lookup(k); ok {
		return s.name
	}
	return k.String()
}
