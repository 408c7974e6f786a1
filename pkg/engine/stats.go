package engine

import (
	"time"

	"github.com/dshills/gonodes/pkg/domain/types"
)

// TickStats summarizes one completed tick. Queried after the tick
// completes, never pushed asynchronously.
type TickStats struct {
	ID        types.TickID
	StartedAt time.Time
	Duration  time.Duration

	// NodesExecuted counts nodes walked to completion this tick,
	// including cache hits and behaviorless no-ops.
	NodesExecuted int

	// CacheHits and CacheMisses are the cache's cumulative counters as
	// of tick completion.
	CacheHits   uint64
	CacheMisses uint64
}

// NodeTiming is the per-node profiling readout.
type NodeTiming struct {
	Node          types.NodeID
	Label         string
	Type          string
	ExecCount     uint64
	LastExecution time.Duration
}

// NodeTimings returns per-node profiling data in node id order.
func (e *Engine) NodeTimings() []NodeTiming {
	timings := make([]NodeTiming, 0, len(e.graph.Nodes))
	for _, n := range e.graph.Nodes {
		timings = append(timings, NodeTiming{
			Node:          n.ID,
			Label:         n.Label,
			Type:          n.TypeName(),
			ExecCount:     n.ExecCount,
			LastExecution: n.LastExecution,
		})
	}
	return timings
}
