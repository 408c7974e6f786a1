// Package types defines core domain identifier types for gonodes.
package types

import "github.com/google/uuid"

// GraphID is a unique identifier for a node graph.
type GraphID string

// TickID is a unique identifier for one evaluation pass over a graph.
type TickID string

// NodeID is a dense integer identifier for a node within a graph.
// Node storage is indexed directly by NodeID, so ids are assigned
// sequentially by the graph and never reused while the graph lives.
type NodeID int32

// NoNode is the sentinel for "no node" (unconnected pin, no paused node).
const NoNode NodeID = -1

// NewGraphID generates a new unique graph ID.
func NewGraphID() GraphID {
	return GraphID(uuid.NewString())
}

// String returns the string representation of a GraphID.
func (id GraphID) String() string {
	return string(id)
}

// IsZero returns true if the GraphID is the zero value.
func (id GraphID) IsZero() bool {
	return id == ""
}

// NewTickID generates a new unique tick ID.
func NewTickID() TickID {
	return TickID(uuid.NewString())
}

// String returns the string representation of a TickID.
func (id TickID) String() string {
	return string(id)
}

// IsZero returns true if the TickID is the zero value.
func (id TickID) IsZero() bool {
	return id == ""
}

// IsValid reports whether the NodeID refers to a real node slot.
func (id NodeID) IsValid() bool {
	return id >= 0
}

// Int returns the NodeID as an int for use as a slice index.
func (id NodeID) Int() int {
	return int(id)
}
