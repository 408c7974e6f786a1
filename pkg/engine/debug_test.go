package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/gonodes/pkg/domain/types"
	"github.com/dshills/gonodes/pkg/graph"
)

func TestStepControllerInitialState(t *testing.T) {
	s := NewStepController()
	assert.Equal(t, FreeRunning, s.Mode())
	assert.False(t, s.Paused())

	id, ok := s.PausedNode()
	assert.False(t, ok)
	assert.Equal(t, types.NoNode, id)
}

func TestStepControllerArming(t *testing.T) {
	s := NewStepController()

	s.StepInto()
	assert.Equal(t, StepIntoArmed, s.Mode())

	s.StepOver()
	assert.Equal(t, StepOverArmed, s.Mode())

	s.Continue()
	assert.Equal(t, FreeRunning, s.Mode())
}

func TestStepControllerPauseDisarms(t *testing.T) {
	s := NewStepController()
	s.StepInto()

	s.pause(types.NodeID(3))
	assert.True(t, s.Paused())
	assert.Equal(t, ModePaused, s.Mode())

	id, ok := s.PausedNode()
	assert.True(t, ok)
	assert.Equal(t, types.NodeID(3), id)

	// The eventual resume must not re-trigger the step arming.
	s.resume()
	assert.False(t, s.Paused())
	assert.Equal(t, FreeRunning, s.Mode())
}

func TestShouldPause(t *testing.T) {
	s := NewStepController()
	plain := &graph.Node{}
	flagged := &graph.Node{Breakpoint: true}

	assert.False(t, s.shouldPause(plain))
	assert.True(t, s.shouldPause(flagged), "breakpoints pause even when free-running")

	s.StepInto()
	assert.True(t, s.shouldPause(plain))

	s.Continue()
	s.StepOver()
	assert.True(t, s.shouldPause(plain))
}

func TestStepModeString(t *testing.T) {
	assert.Equal(t, "free-running", FreeRunning.String())
	assert.Equal(t, "step-into", StepIntoArmed.String())
	assert.Equal(t, "step-over", StepOverArmed.String())
	assert.Equal(t, "paused", ModePaused.String())
}
