package graph

import (
	"errors"
	"fmt"

	"github.com/dshills/gonodes/pkg/domain/types"
)

// Connection is a directed edge from a source node's output pin to a
// target node's input pin. Connections are immutable for the duration of
// a tick; only graph construction/editing code adds or removes them.
type Connection struct {
	SourceNode types.NodeID `json:"source_node" yaml:"source_node"`
	SourcePin  int32        `json:"source_pin" yaml:"source_pin"`
	TargetNode types.NodeID `json:"target_node" yaml:"target_node"`
	TargetPin  int32        `json:"target_pin" yaml:"target_pin"`
}

// Validate checks the connection's structural validity against a graph.
func (c Connection) Validate(g *Graph) error {
	src := g.Node(c.SourceNode)
	if src == nil {
		return fmt.Errorf("connection: source node %d not found", c.SourceNode)
	}
	dst := g.Node(c.TargetNode)
	if dst == nil {
		return fmt.Errorf("connection: target node %d not found", c.TargetNode)
	}
	if c.SourceNode == c.TargetNode {
		return errors.New("connection: self-loop")
	}
	if c.SourcePin < 0 || int(c.SourcePin) >= len(src.Outputs) {
		return fmt.Errorf("connection: source pin %d out of range for node %d", c.SourcePin, c.SourceNode)
	}
	if c.TargetPin < 0 || int(c.TargetPin) >= len(dst.Inputs) {
		return fmt.Errorf("connection: target pin %d out of range for node %d", c.TargetPin, c.TargetNode)
	}
	return nil
}

// String formats the connection for logs and error messages.
func (c Connection) String() string {
	return fmt.Sprintf("%d.%d -> %d.%d", c.SourceNode, c.SourcePin, c.TargetNode, c.TargetPin)
}
