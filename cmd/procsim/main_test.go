package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, "mem://localhost/procsim/script.txt", 0644, strings.NewReader("C 1\nQ\n")))

	testCases := []struct {
		description string
		settings    *settings
		input       string
		expectCode  int
		expect      []string
	}{
		{
			description: "shutdown",
			settings:    &settings{level: "ERROR", scriptURL: "mem://localhost/procsim/script.txt"},
			input:       "T\nE\nK 0\nT\n",
			expect: []string{
				"Running process - PID: 1, Priority: NORMAL",
				"Successfully killed process with PID 1",
				"Terminating the OS. Goodbye.",
			},
		},
		{
			description: "eof",
			settings:    &settings{level: "ERROR", verbose: true},
			input:       "C 0\nF\n\nbogus\n",
			expect:      []string{"PID: 1", "[create] pid 1", "ERROR - cannot fork the init process", "ERROR - invalid command"},
		},
		{
			description: "bad policy",
			settings:    &settings{mode: "eventual"},
			expectCode:  2,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			out := &bytes.Buffer{}
			code, err := run(ctx, testCase.settings, strings.NewReader(testCase.input), out)
			assert.Equal(t, testCase.expectCode, code)
			if testCase.expectCode != 0 {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, fragment := range testCase.expect {
				assert.Contains(t, out.String(), fragment)
			}
		})
	}
}
