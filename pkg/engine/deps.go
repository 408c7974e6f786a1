package engine

import (
	"github.com/dshills/gonodes/pkg/domain/types"
	"github.com/dshills/gonodes/pkg/graph"
)

// PinSource identifies the output pin feeding an input pin.
// Node is NoNode for unconnected inputs.
type PinSource struct {
	Node types.NodeID
	Pin  int32
}

// DependencyIndex is the per-tick derived adjacency relation between
// nodes: which nodes each node depends on, and which nodes depend on it.
// Both relations are stored CSR-style (flat item arrays with per-node
// offsets) so memory stays O(connections) rather than O(nodes²).
//
// The sequential execution core does not consult the adjacency for
// ordering (the precompiled execution order covers that); the index
// exists for future parallel scheduling, plus the per-input-pin source
// table the core uses for O(1) value transfers.
type DependencyIndex struct {
	dependsOnOffsets  []int32
	dependsOnItems    []types.NodeID
	dependentsOffsets []int32
	dependentsItems   []types.NodeID

	// inputSources[node][pin] is the connection source for that input.
	inputSources [][]PinSource
}

// NewDependencyIndex creates an empty index.
func NewDependencyIndex() *DependencyIndex {
	return &DependencyIndex{}
}

// Rebuild clears and repopulates the index from the graph's connection
// list in O(connections). Called by the engine at the start of every
// tick; the index is never persisted across structural edits.
func (d *DependencyIndex) Rebuild(g *graph.Graph) {
	n := len(g.Nodes)

	d.dependsOnOffsets = resizeOffsets(d.dependsOnOffsets, n)
	d.dependentsOffsets = resizeOffsets(d.dependentsOffsets, n)

	// First pass: degree counts.
	for _, c := range g.Connections {
		d.dependsOnOffsets[c.TargetNode.Int()+1]++
		d.dependentsOffsets[c.SourceNode.Int()+1]++
	}

	// Prefix sums turn counts into offsets.
	for i := 0; i < n; i++ {
		d.dependsOnOffsets[i+1] += d.dependsOnOffsets[i]
		d.dependentsOffsets[i+1] += d.dependentsOffsets[i]
	}

	total := len(g.Connections)
	d.dependsOnItems = resizeItems(d.dependsOnItems, total)
	d.dependentsItems = resizeItems(d.dependentsItems, total)

	// Second pass: fill, using cursors that walk each node's slot range.
	dependsCursor := make([]int32, n)
	dependentsCursor := make([]int32, n)
	for _, c := range g.Connections {
		t := c.TargetNode.Int()
		s := c.SourceNode.Int()
		d.dependsOnItems[d.dependsOnOffsets[t]+dependsCursor[t]] = c.SourceNode
		dependsCursor[t]++
		d.dependentsItems[d.dependentsOffsets[s]+dependentsCursor[s]] = c.TargetNode
		dependentsCursor[s]++
	}

	// Input source table for O(1) transfers during execution.
	if cap(d.inputSources) < n {
		d.inputSources = make([][]PinSource, n)
	}
	d.inputSources = d.inputSources[:n]
	for i, node := range g.Nodes {
		if cap(d.inputSources[i]) < len(node.Inputs) {
			d.inputSources[i] = make([]PinSource, len(node.Inputs))
		}
		d.inputSources[i] = d.inputSources[i][:len(node.Inputs)]
		for p := range d.inputSources[i] {
			d.inputSources[i][p] = PinSource{Node: types.NoNode, Pin: -1}
		}
	}
	for _, c := range g.Connections {
		d.inputSources[c.TargetNode.Int()][c.TargetPin] = PinSource{
			Node: c.SourceNode,
			Pin:  c.SourcePin,
		}
	}
}

func resizeOffsets(s []int32, n int) []int32 {
	if cap(s) < n+1 {
		return make([]int32, n+1)
	}
	s = s[:n+1]
	for i := range s {
		s[i] = 0
	}
	return s
}

func resizeItems(s []types.NodeID, n int) []types.NodeID {
	if cap(s) < n {
		return make([]types.NodeID, n)
	}
	return s[:n]
}

// DependsOn returns the nodes the given node directly depends on.
// The returned slice aliases index storage; do not retain it across
// a Rebuild.
func (d *DependencyIndex) DependsOn(id types.NodeID) []types.NodeID {
	if !d.inRange(id) {
		return nil
	}
	return d.dependsOnItems[d.dependsOnOffsets[id.Int()]:d.dependsOnOffsets[id.Int()+1]]
}

// Dependents returns the nodes that directly depend on the given node.
func (d *DependencyIndex) Dependents(id types.NodeID) []types.NodeID {
	if !d.inRange(id) {
		return nil
	}
	return d.dependentsItems[d.dependentsOffsets[id.Int()]:d.dependentsOffsets[id.Int()+1]]
}

// InputSource returns the source feeding the given input pin, or a
// PinSource with Node == NoNode when the pin is unconnected.
func (d *DependencyIndex) InputSource(id types.NodeID, pin int) PinSource {
	if !d.inRange(id) || pin < 0 || pin >= len(d.inputSources[id.Int()]) {
		return PinSource{Node: types.NoNode, Pin: -1}
	}
	return d.inputSources[id.Int()][pin]
}

// Ready reports whether every node in the given node's dependency set is
// marked completed. This is the eligibility rule a future parallel
// scheduler dispatches on.
func (d *DependencyIndex) Ready(id types.NodeID, completed []bool) bool {
	for _, dep := range d.DependsOn(id) {
		if dep.Int() >= len(completed) || !completed[dep.Int()] {
			return false
		}
	}
	return true
}

func (d *DependencyIndex) inRange(id types.NodeID) bool {
	return id.IsValid() && id.Int()+1 < len(d.dependsOnOffsets)
}
