package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gonodes/pkg/domain/types"
	"github.com/dshills/gonodes/pkg/value"
)

func TestAddNodeAssignsDenseIDs(t *testing.T) {
	g := New("test", DefaultRegistry())

	for i := 0; i < 5; i++ {
		n, err := g.AddNode("add")
		require.NoError(t, err)
		assert.Equal(t, types.NodeID(i), n.ID)
		assert.Same(t, n, g.Node(n.ID))
	}
	assert.True(t, g.NeedsRecompile)
}

func TestAddNodeUnknownType(t *testing.T) {
	g := New("test", DefaultRegistry())
	_, err := g.AddNode("no_such_type")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestAddNodeInstantiatesPins(t *testing.T) {
	g := New("test", DefaultRegistry())
	n, err := g.AddNode("add")
	require.NoError(t, err)

	require.Len(t, n.Inputs, 2)
	require.Len(t, n.Outputs, 1)
	assert.Equal(t, "a", n.Inputs[0].Name)
	assert.Equal(t, value.KindFloat, n.Inputs[0].Kind)
	assert.Equal(t, Input, n.Inputs[0].Direction)
	assert.Equal(t, "sum", n.Outputs[0].Name)
	assert.Equal(t, Output, n.Outputs[0].Direction)
}

func TestConnectRules(t *testing.T) {
	g := New("test", DefaultRegistry())
	a, _ := g.AddNode("const_float")
	b, _ := g.AddNode("add")
	s, _ := g.AddNode("const_string")

	require.NoError(t, g.Connect(a.ID, 0, b.ID, 0))

	// Second connection into the same input pin is rejected.
	err := g.Connect(a.ID, 0, b.ID, 0)
	assert.ErrorIs(t, err, ErrInputOccupied)

	// The other input pin is still free.
	require.NoError(t, g.Connect(a.ID, 0, b.ID, 1))

	// Kind mismatch: string output into float input.
	c, _ := g.AddNode("add")
	err = g.Connect(s.ID, 0, c.ID, 0)
	assert.ErrorIs(t, err, ErrKindMismatch)

	// Out-of-range endpoints are rejected.
	assert.Error(t, g.Connect(types.NodeID(99), 0, b.ID, 0))
	assert.Error(t, g.Connect(a.ID, 5, b.ID, 0))
}

func TestConnectPolymorphicPins(t *testing.T) {
	g := New("test", DefaultRegistry())
	f, _ := g.AddNode("const_float")
	s, _ := g.AddNode("const_string")
	sel, _ := g.AddNode("select")
	p, _ := g.AddNode("print")

	// select's if_true/if_false accept any kind, print's input too.
	require.NoError(t, g.Connect(f.ID, 0, sel.ID, 1))
	require.NoError(t, g.Connect(s.ID, 0, sel.ID, 2))
	require.NoError(t, g.Connect(sel.ID, 0, p.ID, 0))
}

func TestDisconnect(t *testing.T) {
	g := New("test", DefaultRegistry())
	a, _ := g.AddNode("const_float")
	b, _ := g.AddNode("negate")
	require.NoError(t, g.Connect(a.ID, 0, b.ID, 0))
	require.NoError(t, g.Compile())
	require.False(t, g.NeedsRecompile)

	assert.True(t, g.Disconnect(b.ID, 0))
	assert.Empty(t, g.Connections)
	assert.True(t, g.NeedsRecompile, "structural edit must mark the graph dirty")

	// Reconnecting the freed pin succeeds.
	require.NoError(t, g.Connect(a.ID, 0, b.ID, 0))

	assert.False(t, g.Disconnect(b.ID, 5), "unconnected pin is a no-op")
}

func TestValidateRejectsDuplicateInput(t *testing.T) {
	g := New("test", DefaultRegistry())
	a, _ := g.AddNode("const_float")
	b, _ := g.AddNode("negate")

	// Bypass Connect to corrupt the connection list directly.
	c := Connection{SourceNode: a.ID, SourcePin: 0, TargetNode: b.ID, TargetPin: 0}
	g.Connections = append(g.Connections, c, c)

	assert.ErrorIs(t, g.Validate(), ErrInputOccupied)
}

func TestValidateRejectsDanglingConnection(t *testing.T) {
	g := New("test", DefaultRegistry())
	a, _ := g.AddNode("const_float")

	g.Connections = append(g.Connections, Connection{
		SourceNode: a.ID, SourcePin: 0, TargetNode: types.NodeID(42), TargetPin: 0,
	})
	assert.Error(t, g.Validate())
}

func TestClear(t *testing.T) {
	g := New("test", DefaultRegistry())
	a, _ := g.AddNode("const_float")
	b, _ := g.AddNode("negate")
	require.NoError(t, g.Connect(a.ID, 0, b.ID, 0))
	require.NoError(t, g.Compile())

	g.Clear()
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Connections)
	assert.Empty(t, g.ExecutionOrder)
}

func TestNodeByLabel(t *testing.T) {
	g := New("test", DefaultRegistry())
	a, _ := g.AddNode("const_float")
	a.Label = "source"

	assert.Same(t, a, g.NodeByLabel("source"))
	assert.Nil(t, g.NodeByLabel("missing"))
	assert.Nil(t, g.NodeByLabel(""))
}

func TestResetStates(t *testing.T) {
	g := New("test", DefaultRegistry())
	a, _ := g.AddNode("const_float")
	a.State = StateCompleted

	g.ResetStates()
	assert.Equal(t, StateIdle, a.State)
}

func TestUnconnectedInputKeepsLastValue(t *testing.T) {
	g := New("test", DefaultRegistry())
	n, _ := g.AddNode("negate")

	n.SetInput(0, value.Float(7))
	g.ResetStates()
	assert.InDelta(t, 7.0, float64(n.Input(0).AsFloat()), 0,
		"state reset must not clear held pin values")
}
