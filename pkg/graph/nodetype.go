package graph

import (
	"errors"
	"fmt"

	"github.com/dshills/gonodes/pkg/value"
)

// Category groups node types for organization and tooling.
type Category string

const (
	// CategoryFlow contains control/selection node types.
	CategoryFlow Category = "flow"
	// CategoryMath contains arithmetic and vector node types.
	CategoryMath Category = "math"
	// CategoryLogic contains boolean node types.
	CategoryLogic Category = "logic"
	// CategoryString contains string node types.
	CategoryString Category = "string"
	// CategoryConstant contains constant-producing node types.
	CategoryConstant Category = "constant"
	// CategoryDebug contains debug/output node types.
	CategoryDebug Category = "debug"
)

// PinSpec declares one pin in a node type's signature.
// A KindNone spec accepts any value kind (polymorphic input).
type PinSpec struct {
	Name string
	Kind value.Kind
}

// Behavior is the execution function shared by all instances of a node
// type. It reads the node's input pin values and writes its output pin
// values. Behaviors must not block; pure behaviors must depend only on
// the current input values.
type Behavior func(n *Node, ctx *ExecContext)

// ConfigureFunc applies document-level parameters to a freshly created
// node instance (constant values, compiled expressions, query paths).
type ConfigureFunc func(n *Node, params map[string]interface{}) error

// NodeType is an immutable, registered descriptor shared by all node
// instances of that type. The engine never mutates a NodeType.
type NodeType struct {
	ID        int32
	Name      string
	Category  Category
	Pure      bool // eligible for memoization: outputs depend only on inputs
	Inputs    []PinSpec
	Outputs   []PinSpec
	Execute   Behavior
	Configure ConfigureFunc
}

// Registry holds the node types available to a graph. Types are looked
// up by name when building graphs and by dense id during execution.
type Registry struct {
	types  []*NodeType
	byName map[string]*NodeType
}

// NewRegistry creates an empty node type registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*NodeType)}
}

// Register adds a node type and assigns its dense id.
func (r *Registry) Register(t *NodeType) error {
	if t == nil {
		return errors.New("registry: nil node type")
	}
	if t.Name == "" {
		return errors.New("registry: empty type name")
	}
	if _, exists := r.byName[t.Name]; exists {
		return fmt.Errorf("registry: type %q already registered", t.Name)
	}

	t.ID = int32(len(r.types))
	r.types = append(r.types, t)
	r.byName[t.Name] = t
	return nil
}

// TypeByName resolves a node type by name.
func (r *Registry) TypeByName(name string) (*NodeType, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// TypeByID resolves a node type by its dense id.
func (r *Registry) TypeByID(id int32) (*NodeType, bool) {
	if id < 0 || int(id) >= len(r.types) {
		return nil, false
	}
	return r.types[id], true
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.types)
}

// Names returns all registered type names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.types))
	for i, t := range r.types {
		names[i] = t.Name
	}
	return names
}
