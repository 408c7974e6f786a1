package engine

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gonodes/pkg/domain/types"
	"github.com/dshills/gonodes/pkg/graph"
	"github.com/dshills/gonodes/pkg/value"
)

// behaviorCounts records how many times each type's behavior actually ran,
// as opposed to being satisfied from the cache.
type behaviorCounts map[string]int

func countingRegistry(t *testing.T, counts behaviorCounts) *graph.Registry {
	t.Helper()
	r := graph.NewRegistry()

	constFive := &graph.NodeType{
		Name:    "const_five",
		Pure:    true,
		Outputs: []graph.PinSpec{{Name: "value", Kind: value.KindFloat}},
		Execute: func(n *graph.Node, _ *graph.ExecContext) {
			counts["const_five"]++
			n.SetOutput(0, value.Float(5))
		},
	}
	double := &graph.NodeType{
		Name:    "double",
		Pure:    true,
		Inputs:  []graph.PinSpec{{Name: "in", Kind: value.KindFloat}},
		Outputs: []graph.PinSpec{{Name: "out", Kind: value.KindFloat}},
		Execute: func(n *graph.Node, _ *graph.ExecContext) {
			counts["double"]++
			n.SetOutput(0, value.Float(n.Input(0).AsFloat()*2))
		},
	}
	inc := &graph.NodeType{
		Name:    "inc",
		Pure:    true,
		Inputs:  []graph.PinSpec{{Name: "in", Kind: value.KindFloat}},
		Outputs: []graph.PinSpec{{Name: "out", Kind: value.KindFloat}},
		Execute: func(n *graph.Node, _ *graph.ExecContext) {
			counts["inc"]++
			n.SetOutput(0, value.Float(n.Input(0).AsFloat()+1))
		},
	}
	ticker := &graph.NodeType{
		Name:    "ticker",
		Pure:    false,
		Outputs: []graph.PinSpec{{Name: "count", Kind: value.KindFloat}},
		Execute: func(n *graph.Node, _ *graph.ExecContext) {
			counts["ticker"]++
			c, _ := n.Custom.(float32)
			c++
			n.Custom = c
			n.SetOutput(0, value.Float(c))
		},
	}
	sink := &graph.NodeType{
		Name:   "sink",
		Pure:   false,
		Inputs: []graph.PinSpec{{Name: "in", Kind: value.KindNone}},
		Execute: func(n *graph.Node, ctx *graph.ExecContext) {
			counts["sink"]++
			fmt.Fprintf(ctx.Output, "%s\n", n.Input(0))
		},
	}

	for _, nt := range []*graph.NodeType{constFive, double, inc, ticker, sink} {
		require.NoError(t, r.Register(nt))
	}
	return r
}

func TestTickMemoizesPureChain(t *testing.T) {
	counts := behaviorCounts{}
	g := graph.New("memo", countingRegistry(t, counts))

	a, _ := g.AddNode("const_five")
	b, _ := g.AddNode("double")
	c, _ := g.AddNode("sink")
	require.NoError(t, g.Connect(a.ID, 0, b.ID, 0))
	require.NoError(t, g.Connect(b.ID, 0, c.ID, 0))
	require.NoError(t, g.Compile())

	var out bytes.Buffer
	eng := New(g)
	ec := graph.NewExecContext(g, &out)

	state, err := eng.Tick(context.Background(), ec)
	require.NoError(t, err)
	require.Equal(t, TickCompleted, state)

	state, err = eng.Tick(context.Background(), ec)
	require.NoError(t, err)
	require.Equal(t, TickCompleted, state)

	// The pure prefix ran only on the first tick; the second tick was
	// served from the cache. The impure sink ran both times.
	assert.Equal(t, 1, counts["const_five"])
	assert.Equal(t, 1, counts["double"])
	assert.Equal(t, 2, counts["sink"])
	assert.InDelta(t, 10.0, float64(b.Output(0).AsFloat()), 0)

	cs := eng.CacheStats()
	assert.Equal(t, uint64(2), cs.Hits)
	assert.Equal(t, uint64(2), cs.Misses)

	// ExecCount counts completions including cache hits.
	assert.Equal(t, uint64(2), a.ExecCount)
	assert.Equal(t, uint64(2), b.ExecCount)
}

func TestTickRecomputesWhenInputsChange(t *testing.T) {
	counts := behaviorCounts{}
	g := graph.New("changing", countingRegistry(t, counts))

	src, _ := g.AddNode("ticker")
	dbl, _ := g.AddNode("double")
	require.NoError(t, g.Connect(src.ID, 0, dbl.ID, 0))
	require.NoError(t, g.Compile())

	eng := New(g)
	ec := graph.NewExecContext(g, nil)

	for tick := 1; tick <= 3; tick++ {
		_, err := eng.Tick(context.Background(), ec)
		require.NoError(t, err)
		// The transfer happens at the moment the consumer runs, so it
		// always observes the current tick's upstream value.
		assert.InDelta(t, float64(tick*2), float64(dbl.Output(0).AsFloat()), 0, "tick %d", tick)
	}

	// Every tick presented a new input; no memoized result applies.
	assert.Equal(t, 3, counts["ticker"])
	assert.Equal(t, 3, counts["double"])
	assert.Equal(t, uint64(0), eng.CacheStats().Hits)
}

func TestTickLongLinearChain(t *testing.T) {
	counts := behaviorCounts{}
	g := graph.New("chain", countingRegistry(t, counts))

	const chainLen = 1000
	head, _ := g.AddNode("const_five")
	prev := head
	for i := 0; i < chainLen; i++ {
		n, err := g.AddNode("inc")
		require.NoError(t, err)
		require.NoError(t, g.Connect(prev.ID, 0, n.ID, 0))
		prev = n
	}
	require.NoError(t, g.Compile())

	eng := New(g, WithCacheCapacity(chainLen+1))
	ec := graph.NewExecContext(g, nil)

	state, err := eng.Tick(context.Background(), ec)
	require.NoError(t, err)
	require.Equal(t, TickCompleted, state)
	assert.InDelta(t, float64(5+chainLen), float64(prev.Output(0).AsFloat()), 0)
	assert.Equal(t, chainLen+1, eng.LastTick().NodesExecuted)

	// The whole chain is pure and inputs are unchanged: the second tick
	// is answered entirely from the cache.
	_, err = eng.Tick(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["const_five"])
	assert.Equal(t, chainLen, counts["inc"])
	assert.Equal(t, uint64(chainLen+1), eng.CacheStats().Hits)
	assert.InDelta(t, float64(5+chainLen), float64(prev.Output(0).AsFloat()), 0)
}

func TestBreakpointPausesAndResumesExactly(t *testing.T) {
	counts := behaviorCounts{}
	g := graph.New("bp", countingRegistry(t, counts))

	a, _ := g.AddNode("ticker")
	b, _ := g.AddNode("double")
	c, _ := g.AddNode("inc")
	d, _ := g.AddNode("sink")
	require.NoError(t, g.Connect(a.ID, 0, b.ID, 0))
	require.NoError(t, g.Connect(b.ID, 0, c.ID, 0))
	require.NoError(t, g.Connect(c.ID, 0, d.ID, 0))
	require.NoError(t, g.Compile())

	c.Breakpoint = true

	eng := New(g)
	ec := graph.NewExecContext(g, nil)

	state, err := eng.Tick(context.Background(), ec)
	require.NoError(t, err)
	require.Equal(t, TickPaused, state)

	paused, ok := eng.Step().PausedNode()
	require.True(t, ok)
	assert.Equal(t, c.ID, paused)

	// The prefix ran, the suffix has not.
	assert.Equal(t, uint64(1), a.ExecCount)
	assert.Equal(t, uint64(1), b.ExecCount)
	assert.Equal(t, uint64(0), c.ExecCount)
	assert.Equal(t, uint64(0), d.ExecCount)

	state, err = eng.Resume(context.Background())
	require.NoError(t, err)
	require.Equal(t, TickCompleted, state)

	// Exactly-once per node: no duplicates on the prefix, no skips on
	// the suffix.
	for _, n := range []*graph.Node{a, b, c, d} {
		assert.Equal(t, uint64(1), n.ExecCount, "node %d", n.ID)
	}
	assert.Equal(t, 4, eng.LastTick().NodesExecuted)
}

func TestStepIntoWalksNodeByNode(t *testing.T) {
	counts := behaviorCounts{}
	g := graph.New("step", countingRegistry(t, counts))

	a, _ := g.AddNode("ticker")
	b, _ := g.AddNode("double")
	c, _ := g.AddNode("inc")
	require.NoError(t, g.Connect(a.ID, 0, b.ID, 0))
	require.NoError(t, g.Connect(b.ID, 0, c.ID, 0))
	require.NoError(t, g.Compile())

	eng := New(g)
	ec := graph.NewExecContext(g, nil)

	eng.Step().StepInto()
	state, err := eng.Tick(context.Background(), ec)
	require.NoError(t, err)
	require.Equal(t, TickPaused, state)

	// Paused before the first node, nothing has run.
	paused, _ := eng.Step().PausedNode()
	assert.Equal(t, a.ID, paused)
	assert.Equal(t, uint64(0), a.ExecCount)

	// Each step-into resume runs exactly one node and pauses before the
	// next one.
	eng.Step().StepInto()
	state, err = eng.Resume(context.Background())
	require.NoError(t, err)
	require.Equal(t, TickPaused, state)
	paused, _ = eng.Step().PausedNode()
	assert.Equal(t, b.ID, paused)
	assert.Equal(t, uint64(1), a.ExecCount)
	assert.Equal(t, uint64(0), b.ExecCount)

	eng.Step().StepInto()
	state, err = eng.Resume(context.Background())
	require.NoError(t, err)
	require.Equal(t, TickPaused, state)
	paused, _ = eng.Step().PausedNode()
	assert.Equal(t, c.ID, paused)

	// Free-running resume finishes the tick.
	state, err = eng.Resume(context.Background())
	require.NoError(t, err)
	require.Equal(t, TickCompleted, state)
	assert.Equal(t, uint64(1), c.ExecCount)
}

func TestDebugProtocolMisuseIsNoOp(t *testing.T) {
	counts := behaviorCounts{}
	g := graph.New("misuse", countingRegistry(t, counts))

	a, _ := g.AddNode("ticker")
	b, _ := g.AddNode("double")
	require.NoError(t, g.Connect(a.ID, 0, b.ID, 0))
	require.NoError(t, g.Compile())
	b.Breakpoint = true

	eng := New(g)
	ec := graph.NewExecContext(g, nil)

	// Resume with no tick in flight: no-op.
	state, err := eng.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TickNotStarted, state)

	state, err = eng.Tick(context.Background(), ec)
	require.NoError(t, err)
	require.Equal(t, TickPaused, state)
	execAtPause := a.ExecCount

	// Tick while paused: no-op, no progress, state unchanged.
	state, err = eng.Tick(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, TickPaused, state)
	assert.Equal(t, execAtPause, a.ExecCount)

	state, err = eng.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TickCompleted, state)
}

func TestTickInvokesRecompileHook(t *testing.T) {
	counts := behaviorCounts{}
	g := graph.New("recompile", countingRegistry(t, counts))

	a, _ := g.AddNode("ticker")
	b, _ := g.AddNode("double")
	require.NoError(t, g.Connect(a.ID, 0, b.ID, 0))

	recompiles := 0
	eng := New(g, WithRecompiler(func(g *graph.Graph) error {
		recompiles++
		return g.Compile()
	}))
	ec := graph.NewExecContext(g, nil)

	// AddNode/Connect left the graph dirty; the first tick recompiles.
	_, err := eng.Tick(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, 1, recompiles)

	// Clean graph: no recompilation.
	_, err = eng.Tick(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, 1, recompiles)

	// A structural edit marks the graph dirty again.
	c, _ := g.AddNode("inc")
	require.NoError(t, g.Connect(b.ID, 0, c.ID, 0))
	_, err = eng.Tick(context.Background(), ec)
	require.NoError(t, err)
	assert.Equal(t, 2, recompiles)
	assert.Len(t, g.ExecutionOrder, 3)
}

func TestTickHonorsContextCancellation(t *testing.T) {
	counts := behaviorCounts{}
	g := graph.New("cancel", countingRegistry(t, counts))
	_, err := g.AddNode("ticker")
	require.NoError(t, err)
	require.NoError(t, g.Compile())

	eng := New(g)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = eng.Tick(ctx, graph.NewExecContext(g, nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTickSkipsUntypedNodes(t *testing.T) {
	counts := behaviorCounts{}
	g := graph.New("untyped", countingRegistry(t, counts))

	a, _ := g.AddNode("ticker")
	// An authoring gap: a node with no type assigned yet.
	g.Nodes = append(g.Nodes, &graph.Node{ID: types.NodeID(1)})
	require.NoError(t, g.Compile())

	eng := New(g)
	events, unsub := eng.Monitor().Subscribe(16)
	defer unsub()

	state, err := eng.Tick(context.Background(), graph.NewExecContext(g, nil))
	require.NoError(t, err)
	require.Equal(t, TickCompleted, state)
	assert.Equal(t, uint64(1), a.ExecCount)

	var skipped bool
	for {
		select {
		case ev := <-events:
			if ev.Type == EventNodeSkipped {
				skipped = true
			}
		default:
			assert.True(t, skipped, "expected a node.skipped event")
			return
		}
	}
}

func TestMonitorEmitsTickLifecycle(t *testing.T) {
	counts := behaviorCounts{}
	g := graph.New("events", countingRegistry(t, counts))
	_, err := g.AddNode("ticker")
	require.NoError(t, err)
	require.NoError(t, g.Compile())

	eng := New(g)
	events, unsub := eng.Monitor().Subscribe(16)
	defer unsub()

	_, err = eng.Tick(context.Background(), graph.NewExecContext(g, nil))
	require.NoError(t, err)

	var got []EventType
	for {
		select {
		case ev := <-events:
			got = append(got, ev.Type)
		default:
			assert.Equal(t, []EventType{
				EventTickStarted,
				EventNodeCompleted,
				EventTickCompleted,
			}, got)
			return
		}
	}
}

func TestLastTickStats(t *testing.T) {
	counts := behaviorCounts{}
	g := graph.New("stats", countingRegistry(t, counts))
	a, _ := g.AddNode("ticker")
	b, _ := g.AddNode("double")
	require.NoError(t, g.Connect(a.ID, 0, b.ID, 0))
	require.NoError(t, g.Compile())

	eng := New(g)
	_, err := eng.Tick(context.Background(), graph.NewExecContext(g, nil))
	require.NoError(t, err)

	stats := eng.LastTick()
	assert.False(t, stats.ID.IsZero())
	assert.Equal(t, 2, stats.NodesExecuted)
	assert.False(t, stats.StartedAt.IsZero())

	timings := eng.NodeTimings()
	require.Len(t, timings, 2)
	assert.Equal(t, uint64(1), timings[0].ExecCount)
	assert.Equal(t, "ticker", timings[0].Type)
}
