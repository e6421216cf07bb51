package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/procsim/model"
)

func TestPolicy_CanDeliver(t *testing.T) {
	testCases := []struct {
		description string
		policy      *Policy
		state       model.State
		expect      bool
	}{
		{description: "nil policy, sem blocked", policy: nil, state: model.StateBlockedSem, expect: true},
		{description: "blocked, send blocked", policy: &Policy{Mode: ModeBlocked}, state: model.StateBlockedSend, expect: true},
		{description: "blocked, ready", policy: &Policy{Mode: ModeBlocked}, state: model.StateReady, expect: false},
		{description: "blocked, running", policy: &Policy{Mode: ModeBlocked}, state: model.StateRunning, expect: false},
		{description: "rendezvous, receive blocked", policy: &Policy{Mode: ModeRendezvous}, state: model.StateBlockedReceive, expect: true},
		{description: "rendezvous, sem blocked", policy: &Policy{Mode: ModeRendezvous}, state: model.StateBlockedSem, expect: false},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, testCase.policy.CanDeliver(testCase.state), testCase.description)
	}
}

func TestParse(t *testing.T) {
	p, err := Parse(" Rendezvous ")
	require.NoError(t, err)
	assert.True(t, p.IsRendezvous())

	p, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, ModeBlocked, p.Mode)

	_, err = Parse("ask")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	ctx := WithPolicy(context.Background(), &Policy{Mode: ModeRendezvous})
	assert.True(t, FromContext(ctx).IsRendezvous())
	assert.Equal(t, &Config{Mode: ModeRendezvous}, ToConfig(FromContext(ctx)))
}
