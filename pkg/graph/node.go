package graph

import (
	"io"
	"time"

	"github.com/dshills/gonodes/pkg/domain/types"
	"github.com/dshills/gonodes/pkg/value"
)

// State is the lifecycle state of a node within the current tick.
type State uint8

const (
	// StateIdle means the node has not run in the current tick.
	StateIdle State = iota
	// StateExecuting means the node's behavior is running right now.
	StateExecuting
	// StateCompleted means the node finished in the current tick.
	StateCompleted
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// Direction marks a pin as an input or an output.
type Direction uint8

const (
	// Input pins receive values over connections.
	Input Direction = iota
	// Output pins feed values to downstream inputs.
	Output
)

// Pin is a typed value slot on a node. An input pin has at most one
// incoming connection; an output pin may feed many. An unconnected input
// keeps its last-held value across ticks.
type Pin struct {
	Name      string
	Kind      value.Kind
	Direction Direction
	Value     value.Value
	Default   value.Value
}

// Node is one unit of computation in a graph. Nodes are owned by the
// graph, stored densely, and addressed by their integer id.
type Node struct {
	ID    types.NodeID
	Label string // document label; empty for programmatically built nodes
	Type  *NodeType

	Inputs  []Pin
	Outputs []Pin

	State      State
	Breakpoint bool

	// Profiling, readable after a tick completes.
	ExecCount     uint64
	LastExecution time.Duration

	// Custom holds node-local configured state (compiled expression,
	// query path, loop counter). Owned by the node's type.
	Custom interface{}
}

// Input returns the value of the input pin at index i.
// Out-of-range indexes return the zero Value.
func (n *Node) Input(i int) value.Value {
	if i < 0 || i >= len(n.Inputs) {
		return value.Value{}
	}
	return n.Inputs[i].Value
}

// SetInput sets the value of the input pin at index i.
// Out-of-range indexes are ignored.
func (n *Node) SetInput(i int, v value.Value) {
	if i < 0 || i >= len(n.Inputs) {
		return
	}
	n.Inputs[i].Value = v
}

// Output returns the value of the output pin at index i.
func (n *Node) Output(i int) value.Value {
	if i < 0 || i >= len(n.Outputs) {
		return value.Value{}
	}
	return n.Outputs[i].Value
}

// SetOutput sets the value of the output pin at index i.
func (n *Node) SetOutput(i int, v value.Value) {
	if i < 0 || i >= len(n.Outputs) {
		return
	}
	n.Outputs[i].Value = v
}

// TypeName returns the node type name, or "" for an untyped node.
func (n *Node) TypeName() string {
	if n.Type == nil {
		return ""
	}
	return n.Type.Name
}

// Pure reports whether the node's type is marked side-effect free.
func (n *Node) Pure() bool {
	return n.Type != nil && n.Type.Pure
}

// ResetPins restores every pin to its declared default value.
func (n *Node) ResetPins() {
	for i := range n.Inputs {
		n.Inputs[i].Value = n.Inputs[i].Default
	}
	for i := range n.Outputs {
		n.Outputs[i].Value = n.Outputs[i].Default
	}
}

// ExecContext is the shared context handed to node behaviors during a
// tick. One context belongs to one evaluation stream; the batch harness
// runs the same graph across many independent contexts.
type ExecContext struct {
	Graph    *Graph
	UserData interface{}

	// Output is the sink for debug/print node types. Defaults to
	// io.Discard when nil is passed to NewExecContext.
	Output io.Writer

	// NodesExecuted counts behavior invocations attributed to this
	// context, across ticks and batch runs.
	NodesExecuted int
}

// NewExecContext creates an execution context for the given graph.
func NewExecContext(g *Graph, out io.Writer) *ExecContext {
	if out == nil {
		out = io.Discard
	}
	return &ExecContext{Graph: g, Output: out}
}
