// Package graph defines the node graph model evaluated by pkg/engine:
// typed nodes and pins, directed connections, the node type registry,
// YAML parsing, schema validation, and compilation to an execution order.
package graph

import (
	"errors"
	"fmt"

	"github.com/dshills/gonodes/pkg/domain/types"
	"github.com/dshills/gonodes/pkg/value"
)

// Sentinel errors for graph construction.
var (
	// ErrUnknownType is returned when a node type name is not registered.
	ErrUnknownType = errors.New("graph: unknown node type")
	// ErrInputOccupied is returned when connecting to an input pin that
	// already has an incoming connection.
	ErrInputOccupied = errors.New("graph: input pin already connected")
	// ErrKindMismatch is returned when connecting pins of different kinds.
	ErrKindMismatch = errors.New("graph: pin kind mismatch")
)

// Graph owns a set of nodes and the connections between them, plus the
// precompiled execution order the engine walks each tick.
//
// A Graph is not safe for concurrent use; a single caller owns it and
// runs ticks sequentially.
type Graph struct {
	ID    types.GraphID
	Name  string
	Types *Registry

	// Nodes is dense: Nodes[i].ID == i. Slots are never reused while
	// the graph lives, preserving O(1) lookup by id.
	Nodes []*Node

	Connections []Connection

	// ExecutionOrder is a valid topological ordering of Connections,
	// produced by Compile. The engine trusts it and does not re-check.
	ExecutionOrder []types.NodeID

	// NeedsRecompile is set by any structural edit and cleared by
	// Compile. The engine defers to its recompile hook when set.
	NeedsRecompile bool
}

// New creates an empty graph backed by the given type registry.
func New(name string, reg *Registry) *Graph {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Graph{
		ID:    types.NewGraphID(),
		Name:  name,
		Types: reg,
	}
}

// AddNode creates a node of the named registered type and returns it.
func (g *Graph) AddNode(typeName string) (*Node, error) {
	t, ok := g.Types.TypeByName(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typeName)
	}
	return g.AddNodeOfType(t), nil
}

// AddNodeOfType creates a node instance from a type descriptor,
// instantiating pins from the type's pin specs.
func (g *Graph) AddNodeOfType(t *NodeType) *Node {
	n := &Node{
		ID:      types.NodeID(len(g.Nodes)),
		Type:    t,
		Inputs:  makePins(t.Inputs, Input),
		Outputs: makePins(t.Outputs, Output),
	}
	g.Nodes = append(g.Nodes, n)
	g.NeedsRecompile = true
	return n
}

func makePins(specs []PinSpec, dir Direction) []Pin {
	pins := make([]Pin, len(specs))
	for i, s := range specs {
		pins[i] = Pin{Name: s.Name, Kind: s.Kind, Direction: dir}
	}
	return pins
}

// Node returns the node with the given id, or nil if out of range.
func (g *Graph) Node(id types.NodeID) *Node {
	if !id.IsValid() || id.Int() >= len(g.Nodes) {
		return nil
	}
	return g.Nodes[id.Int()]
}

// Connect adds a directed connection from an output pin to an input pin.
// Pin kinds must match unless either side is declared polymorphic
// (KindNone). An input pin accepts at most one incoming connection.
func (g *Graph) Connect(srcNode types.NodeID, srcPin int, dstNode types.NodeID, dstPin int) error {
	c := Connection{
		SourceNode: srcNode,
		SourcePin:  int32(srcPin),
		TargetNode: dstNode,
		TargetPin:  int32(dstPin),
	}
	if err := c.Validate(g); err != nil {
		return err
	}

	for _, existing := range g.Connections {
		if existing.TargetNode == c.TargetNode && existing.TargetPin == c.TargetPin {
			return fmt.Errorf("%w: %s", ErrInputOccupied, c)
		}
	}

	srcKind := g.Node(srcNode).Outputs[srcPin].Kind
	dstKind := g.Node(dstNode).Inputs[dstPin].Kind
	if srcKind != dstKind && srcKind != value.KindNone && dstKind != value.KindNone {
		return fmt.Errorf("%w: %s (%s -> %s)", ErrKindMismatch, c, srcKind, dstKind)
	}

	g.Connections = append(g.Connections, c)
	g.NeedsRecompile = true
	return nil
}

// Disconnect removes the connection feeding the given input pin, if any.
// Returns true if a connection was removed.
func (g *Graph) Disconnect(dstNode types.NodeID, dstPin int) bool {
	for i, c := range g.Connections {
		if c.TargetNode == dstNode && int(c.TargetPin) == dstPin {
			g.Connections = append(g.Connections[:i], g.Connections[i+1:]...)
			g.NeedsRecompile = true
			return true
		}
	}
	return false
}

// Clear removes all nodes, connections, and the execution order.
func (g *Graph) Clear() {
	g.Nodes = nil
	g.Connections = nil
	g.ExecutionOrder = nil
	g.NeedsRecompile = false
}

// Validate checks structural integrity: every connection refers to real
// nodes and in-range pins, and no input pin has two incoming connections.
func (g *Graph) Validate() error {
	seen := make(map[[2]int32]struct{}, len(g.Connections))
	for _, c := range g.Connections {
		if err := c.Validate(g); err != nil {
			return err
		}
		key := [2]int32{int32(c.TargetNode), c.TargetPin}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s", ErrInputOccupied, c)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ResetStates returns every node to StateIdle. Called by the engine at
// the start of a tick.
func (g *Graph) ResetStates() {
	for _, n := range g.Nodes {
		n.State = StateIdle
	}
}

// NodeByLabel finds a node by its document label. Returns nil when no
// node carries the label.
func (g *Graph) NodeByLabel(label string) *Node {
	if label == "" {
		return nil
	}
	for _, n := range g.Nodes {
		if n.Label == label {
			return n
		}
	}
	return nil
}
