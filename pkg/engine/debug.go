package engine

import (
	"github.com/dshills/gonodes/pkg/domain/types"
	"github.com/dshills/gonodes/pkg/graph"
)

// StepMode is the debugger arming state.
type StepMode uint8

const (
	// FreeRunning executes without stopping except at breakpoints.
	FreeRunning StepMode = iota
	// StepIntoArmed pauses before the very next node.
	StepIntoArmed
	// StepOverArmed pauses once control returns to the same call depth.
	// The base engine has no nested sub-graph calls, so this degenerates
	// to step-into until sub-graph invocation is layered on top.
	StepOverArmed
	// ModePaused means a tick is suspended between nodes.
	ModePaused
)

// String returns the mode name for status readouts.
func (m StepMode) String() string {
	switch m {
	case FreeRunning:
		return "free-running"
	case StepIntoArmed:
		return "step-into"
	case StepOverArmed:
		return "step-over"
	case ModePaused:
		return "paused"
	}
	return "unknown"
}

// StepController is the breakpoint and single-step state machine. It can
// pause the execution core between nodes and is consulted before each
// node runs. All operations are safe to call at any time: stepping with
// no active tick simply arms a pause that the next tick honors, and
// redundant calls are no-ops.
type StepController struct {
	mode       StepMode
	paused     bool
	pausedNode types.NodeID
}

// NewStepController creates a controller in the free-running state.
func NewStepController() *StepController {
	return &StepController{pausedNode: types.NoNode}
}

// StepInto arms a pause before the very next node.
func (s *StepController) StepInto() {
	s.mode = StepIntoArmed
}

// StepOver arms a pause at the current call depth.
func (s *StepController) StepOver() {
	s.mode = StepOverArmed
}

// Continue clears all pause arming; execution resumes free-running when
// the engine's Resume entry point is invoked.
func (s *StepController) Continue() {
	s.mode = FreeRunning
}

// Mode returns the current debugger state.
func (s *StepController) Mode() StepMode {
	if s.paused {
		return ModePaused
	}
	return s.mode
}

// Paused reports whether a tick is currently suspended.
func (s *StepController) Paused() bool {
	return s.paused
}

// PausedNode returns the node the tick is suspended before, when paused.
func (s *StepController) PausedNode() (types.NodeID, bool) {
	if !s.paused {
		return types.NoNode, false
	}
	return s.pausedNode, true
}

// shouldPause reports whether execution must suspend before this node:
// an explicit breakpoint always triggers regardless of step mode.
func (s *StepController) shouldPause(n *graph.Node) bool {
	return n.Breakpoint || s.mode == StepIntoArmed || s.mode == StepOverArmed
}

// pause records the suspension point and disarms single-stepping so the
// eventual resume doesn't immediately re-trigger.
func (s *StepController) pause(id types.NodeID) {
	s.paused = true
	s.pausedNode = id
	s.mode = FreeRunning
}

// resume clears the paused state.
func (s *StepController) resume() {
	s.paused = false
	s.pausedNode = types.NoNode
}
