package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input     string
		expect    slog.Level
		expectErr bool
	}{
		{input: "debug", expect: slog.LevelDebug},
		{input: "", expect: slog.LevelInfo},
		{input: "WARN", expect: slog.LevelWarn},
		{input: "error", expect: slog.LevelError},
		{input: "verbose", expect: slog.LevelInfo, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.input, func(t *testing.T) {
			actual, err := ParseLevel(testCase.input)
			assert.Equal(t, testCase.expect, actual)
			assert.Equal(t, testCase.expectErr, err != nil)
		})
	}
}

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(buf, "WARN")
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown", "pid", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "pid=3")
}
