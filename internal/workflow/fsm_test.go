package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFSMTransitions(t *testing.T) {
	fsm := NewFSM()

	assert.True(t, fsm.CanTransition(StateSelectingDate, StateSelectingTime))
	assert.True(t, fsm.CanTransition(StateSelectingTime, StateConfirming))
	assert.True(t, fsm.CanTransition(StateConfirming, StateCommitted))
	assert.True(t, fsm.CanTransition(StateConfirming, StateSelectingTime))
	assert.True(t, fsm.CanTransition(StateFailed, StateConfirming))

	assert.False(t, fsm.CanTransition(StateSelectingDate, StateConfirming), "confirmation requires a selected time")
	assert.False(t, fsm.CanTransition(StateCommitted, StateSelectingDate), "committed is terminal")
	assert.False(t, fsm.CanTransition(StateSelectingDate, StateCommitted))
}
