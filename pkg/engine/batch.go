package engine

import (
	"context"

	gnerrors "github.com/dshills/gonodes/pkg/errors"
	"github.com/dshills/gonodes/pkg/graph"
)

// BatchExecute runs the compiled graph across many independent contexts:
// for each node in the execution order, the node's behavior runs once
// per context before the walk advances to the next node (node-major,
// context-minor). Grouping identical computation adjacently keeps a
// node's working set hot across the whole batch and leaves room for
// vectorized behaviors.
//
// Pin values flow through the graph's shared pin storage; per-context
// variation comes from each context's UserData. This is a distinct code
// path from Tick: the memoization cache is not consulted (batch inputs
// typically differ per context, making memoization low-value), and the
// debug controller does not interrupt it.
func (e *Engine) BatchExecute(ctx context.Context, contexts []*graph.ExecContext) error {
	if len(contexts) == 0 {
		return nil
	}

	g := e.graph
	if g.NeedsRecompile && e.recompile != nil {
		if err := e.recompile(g); err != nil {
			return gnerrors.New("recompiling graph", g.ID.String(), "", err)
		}
	}

	e.deps.Rebuild(g)

	for _, id := range g.ExecutionOrder {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := g.Node(id)
		if n == nil || n.Type == nil || n.Type.Execute == nil {
			continue
		}

		for _, ec := range contexts {
			if ec == nil {
				continue
			}
			ec.Graph = g

			e.transferInputs(n)
			n.Type.Execute(n, ec)
			n.ExecCount++
			ec.NodesExecuted++
		}
	}

	return nil
}
