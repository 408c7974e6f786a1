package graph

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlGraph is the YAML document structure before conversion to a Graph.
type yamlGraph struct {
	Name        string           `yaml:"name"`
	Nodes       []yamlNode       `yaml:"nodes"`
	Connections []yamlConnection `yaml:"connections,omitempty"`
}

// yamlNode declares one node: a unique label, a registered type name,
// optional type-specific parameters, and an optional breakpoint flag.
type yamlNode struct {
	ID         string                 `yaml:"id"`
	Type       string                 `yaml:"type"`
	Params     map[string]interface{} `yaml:"params,omitempty"`
	Breakpoint bool                   `yaml:"breakpoint,omitempty"`
}

// yamlConnection declares one edge between labeled nodes' pins.
type yamlConnection struct {
	From    string `yaml:"from"`
	FromPin int    `yaml:"from_pin,omitempty"`
	To      string `yaml:"to"`
	ToPin   int    `yaml:"to_pin,omitempty"`
}

// Parse builds a Graph from YAML bytes against the given type registry.
// The returned graph is not yet compiled; callers run Compile (or hand
// the graph to an engine configured with a recompile hook).
func Parse(data []byte, reg *Registry) (*Graph, error) {
	if len(data) == 0 {
		return nil, errors.New("graph: empty YAML input")
	}

	var doc yamlGraph
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("graph: failed to parse YAML: %w", err)
	}
	if doc.Name == "" {
		return nil, errors.New("graph: missing graph name")
	}
	if len(doc.Nodes) == 0 {
		return nil, errors.New("graph: document declares no nodes")
	}

	g := New(doc.Name, reg)
	labels := make(map[string]*Node, len(doc.Nodes))

	for _, yn := range doc.Nodes {
		if yn.ID == "" {
			return nil, errors.New("graph: node with empty id")
		}
		if _, dup := labels[yn.ID]; dup {
			return nil, fmt.Errorf("graph: duplicate node id %q", yn.ID)
		}

		n, err := g.AddNode(yn.Type)
		if err != nil {
			return nil, fmt.Errorf("graph: node %q: %w", yn.ID, err)
		}
		n.Label = yn.ID
		n.Breakpoint = yn.Breakpoint

		if n.Type.Configure != nil && yn.Params != nil {
			if err := n.Type.Configure(n, yn.Params); err != nil {
				return nil, fmt.Errorf("graph: node %q: %w", yn.ID, err)
			}
		}
		labels[yn.ID] = n
	}

	for _, yc := range doc.Connections {
		src, ok := labels[yc.From]
		if !ok {
			return nil, fmt.Errorf("graph: connection references unknown node %q", yc.From)
		}
		dst, ok := labels[yc.To]
		if !ok {
			return nil, fmt.Errorf("graph: connection references unknown node %q", yc.To)
		}
		if err := g.Connect(src.ID, yc.FromPin, dst.ID, yc.ToPin); err != nil {
			return nil, fmt.Errorf("graph: connect %q.%d -> %q.%d: %w",
				yc.From, yc.FromPin, yc.To, yc.ToPin, err)
		}
	}

	return g, nil
}

// ParseFile reads and parses a YAML graph document from disk.
func ParseFile(path string, reg *Registry) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graph: failed to read %s: %w", path, err)
	}
	return Parse(data, reg)
}
