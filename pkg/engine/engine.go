// Package engine evaluates compiled node graphs: it walks the
// precomputed topological order once per tick, transfers values along
// connections just before each node runs, memoizes pure sub-computations,
// and supports breakpoint-based single-stepping with exact resumption.
package engine

import (
	"context"
	"time"

	"github.com/dshills/gonodes/pkg/domain/types"
	gnerrors "github.com/dshills/gonodes/pkg/errors"
	"github.com/dshills/gonodes/pkg/graph"
)

// TickState is the per-tick state machine:
// NotStarted -> Running -> (Paused <-> Running) -> Completed.
type TickState uint8

const (
	// TickNotStarted means no tick has begun since creation or the last
	// completion consumed its state.
	TickNotStarted TickState = iota
	// TickRunning means a tick is in progress on the caller's stack.
	TickRunning
	// TickPaused means a tick is suspended at a debug pause point and
	// can be resumed without restarting.
	TickPaused
	// TickCompleted means the last tick ran the full execution order.
	TickCompleted
)

// String returns the state name.
func (s TickState) String() string {
	switch s {
	case TickNotStarted:
		return "not-started"
	case TickRunning:
		return "running"
	case TickPaused:
		return "paused"
	case TickCompleted:
		return "completed"
	}
	return "unknown"
}

// RecompileFunc is the engine's hook to the external compiler. It is
// invoked before a tick when the graph is marked NeedsRecompile; the
// engine never sorts the graph itself.
type RecompileFunc func(*graph.Graph) error

// Option configures an Engine.
type Option func(*Engine)

// WithCache supplies a pre-built memoization cache (e.g. shared between
// sequential sessions over the same graph).
func WithCache(c *MemoCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithCacheCapacity sizes the engine's own cache.
func WithCacheCapacity(capacity int) Option {
	return func(e *Engine) { e.cache = NewMemoCache(capacity) }
}

// WithRecompiler installs the external recompilation hook.
func WithRecompiler(fn RecompileFunc) Option {
	return func(e *Engine) { e.recompile = fn }
}

// WithLogger installs a profiling logger invoked on tick completion.
func WithLogger(l *Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine is an evaluation session over one graph. It owns the
// memoization cache, the dependency index, and the debug controller.
// An Engine is single-threaded by design: one caller invokes ticks
// sequentially, and the only suspension point is the debug pause.
type Engine struct {
	graph     *graph.Graph
	cache     *MemoCache
	deps      *DependencyIndex
	step      *StepController
	monitor   *Monitor
	logger    *Logger
	recompile RecompileFunc

	state  TickState
	pos    int // index into the execution order; the resume cursor
	ec     *graph.ExecContext
	tickID types.TickID
	start  time.Time
	stats  TickStats
	last   TickStats
}

// New creates an engine session for the given graph.
func New(g *graph.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:   g,
		deps:    NewDependencyIndex(),
		step:    NewStepController(),
		monitor: NewMonitor(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewMemoCache(DefaultCacheCapacity)
	}
	return e
}

// Graph returns the graph this engine evaluates.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// State returns the current tick state.
func (e *Engine) State() TickState {
	return e.state
}

// Step returns the debug/step controller.
func (e *Engine) Step() *StepController {
	return e.step
}

// Monitor returns the engine's event monitor.
func (e *Engine) Monitor() *Monitor {
	return e.monitor
}

// CacheStats returns the memoization cache counters.
func (e *Engine) CacheStats() CacheStats {
	return e.cache.Stats()
}

// Deps returns the dependency index as rebuilt for the current tick.
func (e *Engine) Deps() *DependencyIndex {
	return e.deps
}

// Tick evaluates the graph once. It returns TickCompleted when the whole
// execution order ran, or TickPaused when the debug controller suspended
// the tick; a paused tick is continued with Resume, not Tick.
//
// Calling Tick while a tick is paused is a protocol no-op: the current
// state is returned unchanged.
func (e *Engine) Tick(ctx context.Context, ec *graph.ExecContext) (TickState, error) {
	if e.state == TickPaused {
		return e.state, nil
	}

	g := e.graph
	if g.NeedsRecompile && e.recompile != nil {
		if err := e.recompile(g); err != nil {
			return e.state, gnerrors.New("recompiling graph", g.ID.String(), "", err)
		}
	}

	e.deps.Rebuild(g)
	e.cache.AdvanceTick()
	g.ResetStates()

	if ec == nil {
		ec = graph.NewExecContext(g, nil)
	}
	e.ec = ec
	e.pos = 0
	e.tickID = types.NewTickID()
	e.start = time.Now()
	e.stats = TickStats{ID: e.tickID, StartedAt: e.start}
	e.state = TickRunning

	e.monitor.Emit(Event{Type: EventTickStarted, GraphID: g.ID, TickID: e.tickID})

	return e.run(ctx, false)
}

// Resume continues a paused tick from the exact node it suspended
// before. Resuming when no tick is paused is a no-op.
func (e *Engine) Resume(ctx context.Context) (TickState, error) {
	if e.state != TickPaused {
		return e.state, nil
	}

	e.step.resume()
	e.state = TickRunning
	return e.run(ctx, true)
}

// run executes the remaining suffix of the execution order. resuming
// suppresses the pause check for the first node so a breakpoint does not
// immediately re-trigger on the node it paused at.
func (e *Engine) run(ctx context.Context, resuming bool) (TickState, error) {
	g := e.graph
	order := g.ExecutionOrder
	skipPause := resuming

	for e.pos < len(order) {
		if err := ctx.Err(); err != nil {
			return e.state, err
		}

		id := order[e.pos]
		n := g.Node(id)
		if n == nil || n.Type == nil {
			// Configuration gap while authoring: skip, never fatal.
			e.monitor.Emit(Event{Type: EventNodeSkipped, GraphID: g.ID, TickID: e.tickID, NodeID: id})
			e.pos++
			continue
		}

		if !skipPause && e.step.shouldPause(n) {
			e.step.pause(id)
			e.state = TickPaused
			e.monitor.Emit(Event{Type: EventTickPaused, GraphID: g.ID, TickID: e.tickID, NodeID: id})
			return e.state, nil
		}
		skipPause = false

		e.transferInputs(n)

		n.State = graph.StateExecuting
		nodeStart := time.Now()

		if n.Type.Execute == nil {
			// No behavior: a no-op, tolerated during authoring.
		} else if e.cache.Lookup(n) {
			// Hit: cached outputs already adopted.
		} else {
			n.Type.Execute(n, e.ec)
			e.ec.NodesExecuted++
			if n.Pure() {
				e.cache.Store(n)
			}
		}

		n.State = graph.StateCompleted
		n.ExecCount++
		n.LastExecution = time.Since(nodeStart)
		e.stats.NodesExecuted++
		e.pos++

		e.monitor.Emit(Event{Type: EventNodeCompleted, GraphID: g.ID, TickID: e.tickID, NodeID: id})
	}

	e.completeTick()
	return e.state, nil
}

// transferInputs copies each connected source output into this node's
// inputs, immediately before the node runs. Unconnected inputs keep
// their last-held value: "no new data this tick" is an explicit signal,
// not a zeroing.
func (e *Engine) transferInputs(n *graph.Node) {
	for pin := range n.Inputs {
		src := e.deps.InputSource(n.ID, pin)
		if !src.Node.IsValid() {
			continue
		}
		source := e.graph.Node(src.Node)
		if source == nil || int(src.Pin) >= len(source.Outputs) {
			continue
		}
		n.Inputs[pin].Value = source.Outputs[src.Pin].Value
	}
}

func (e *Engine) completeTick() {
	e.state = TickCompleted
	e.stats.Duration = time.Since(e.start)
	cs := e.cache.Stats()
	e.stats.CacheHits = cs.Hits
	e.stats.CacheMisses = cs.Misses
	e.last = e.stats

	e.monitor.Emit(Event{Type: EventTickCompleted, GraphID: e.graph.ID, TickID: e.tickID})

	if e.logger != nil {
		e.logger.LogTickComplete(e.graph, e.last, e.NodeTimings())
	}
}

// LastTick returns statistics for the most recently completed tick.
func (e *Engine) LastTick() TickStats {
	return e.last
}
