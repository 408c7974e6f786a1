// Package errors provides operational error wrapping for gonodes.
package errors

import (
	"fmt"
	"time"
)

// OperationalError wraps an error with operational context: which
// operation was running, on which graph, and (when applicable) at which
// node. It enables precise error reporting from engine entry points
// without losing the underlying cause.
type OperationalError struct {
	Operation  string                 // What operation was being performed
	GraphID    string                 // Which graph
	NodeID     string                 // Which node (if applicable)
	Timestamp  time.Time              // When the error occurred
	Attributes map[string]interface{} // Additional context (optional)
	Cause      error                  // Underlying error
}

// New creates an OperationalError wrapping an error.
// Returns nil if cause is nil (no error to wrap).
func New(operation, graphID, nodeID string, cause error) *OperationalError {
	if cause == nil {
		return nil
	}

	return &OperationalError{
		Operation: operation,
		GraphID:   graphID,
		NodeID:    nodeID,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// NewWithAttrs creates an OperationalError with additional attributes.
// Returns nil if cause is nil.
func NewWithAttrs(operation, graphID, nodeID string, cause error, attrs map[string]interface{}) *OperationalError {
	if cause == nil {
		return nil
	}

	return &OperationalError{
		Operation:  operation,
		GraphID:    graphID,
		NodeID:     nodeID,
		Timestamp:  time.Now(),
		Attributes: attrs,
		Cause:      cause,
	}
}

// Error implements the error interface.
//
// Format: "[timestamp] operation: graph={id} node={id}: {cause}"
// The node segment is omitted when no node is involved.
func (e *OperationalError) Error() string {
	if e == nil {
		return "<nil OperationalError>"
	}

	timestamp := e.Timestamp.Format(time.RFC3339)
	if e.NodeID != "" {
		return fmt.Sprintf("[%s] %s: graph=%s node=%s: %v",
			timestamp, e.Operation, e.GraphID, e.NodeID, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: graph=%s: %v",
		timestamp, e.Operation, e.GraphID, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *OperationalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
