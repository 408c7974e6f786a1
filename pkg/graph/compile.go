package graph

import (
	"errors"

	"github.com/dshills/gonodes/pkg/domain/types"
)

// ErrCycle is returned by Compile when the connection graph contains a
// cycle and no topological order exists.
var ErrCycle = errors.New("graph: cycle detected")

// Compile produces the execution order: a topological ordering of the
// nodes with respect to the connection graph, using Kahn's algorithm.
// For every connection (a -> b), a appears before b in the order.
//
// Compilation is the editor/loader's responsibility, not the engine's;
// the engine only consults NeedsRecompile and defers to its recompile
// hook. Ties are broken by ascending node id so the order is stable.
func (g *Graph) Compile() error {
	if err := g.Validate(); err != nil {
		return err
	}

	n := len(g.Nodes)
	inDegree := make([]int32, n)
	adjacency := make([][]types.NodeID, n)

	for _, c := range g.Connections {
		adjacency[c.SourceNode.Int()] = append(adjacency[c.SourceNode.Int()], c.TargetNode)
		inDegree[c.TargetNode.Int()]++
	}

	queue := make([]types.NodeID, 0, n)
	for id := 0; id < n; id++ {
		if inDegree[id] == 0 {
			queue = append(queue, types.NodeID(id))
		}
	}

	order := make([]types.NodeID, 0, n)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, next := range adjacency[current.Int()] {
			inDegree[next.Int()]--
			if inDegree[next.Int()] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != n {
		return ErrCycle
	}

	g.ExecutionOrder = order
	g.NeedsRecompile = false
	return nil
}
