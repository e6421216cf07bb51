package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/procsim/model"
)

var (
	// ErrUnknownCommand is returned for an unrecognised command letter.
	ErrUnknownCommand = errors.New("invalid command")
	// ErrUsage is returned when arguments do not match the command.
	ErrUsage = errors.New("invalid arguments")
)

// Parse parses one input line.
func Parse(line string) (*Command, error) {
	cursor := parsly.NewCursor("", []byte(line), 0)

	matched := cursor.MatchAfterOptional(whitespaceToken, letterToken)
	if matched.Code != letterCode {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, strings.TrimSpace(line))
	}
	kind := Kind(strings.ToUpper(matched.Text(cursor))[0])
	spec, ok := lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, kind.String())
	}
	cmd := &Command{Kind: kind}

	if spec.priority {
		matched = cursor.MatchAfterOptional(whitespaceToken, wordToken)
		if matched.Code != wordCode {
			return nil, usageError(spec)
		}
		priority, err := model.ParsePriority(matched.Text(cursor))
		if err != nil {
			return nil, err
		}
		cmd.Priority = priority
	}

	for i := 0; i < spec.ints; i++ {
		matched = cursor.MatchAfterOptional(whitespaceToken, integerToken)
		if matched.Code != integerCode {
			return nil, usageError(spec)
		}
		value, err := strconv.Atoi(matched.Text(cursor))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		cmd.Args = append(cmd.Args, value)
	}

	if spec.text {
		if matched = cursor.MatchAfterOptional(whitespaceToken, textToken); matched.Code == textCode {
			cmd.Text = matched.Text(cursor)
		}
	}

	cursor.MatchOne(whitespaceToken)
	if cursor.HasMore() {
		return nil, usageError(spec)
	}
	return cmd, nil
}

func usageError(spec spec) error {
	return fmt.Errorf("%w, usage: %s", ErrUsage, spec.usage)
}
