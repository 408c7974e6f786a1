package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/gonodes/pkg/engine"
	"github.com/dshills/gonodes/pkg/graph"
	"github.com/dshills/gonodes/pkg/storage"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var (
		ticks   int
		profile bool
		showOut bool
	)

	cmd := &cobra.Command{
		Use:   "run <graph.yaml>",
		Short: "Evaluate a graph document for one or more ticks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args[0], ticks, profile, showOut)
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "t", 1, "Number of ticks to evaluate")
	cmd.Flags().BoolVar(&profile, "profile", false, "Persist tick profiles to the database")
	cmd.Flags().BoolVar(&showOut, "outputs", true, "Print final output pin values")

	return cmd
}

func runGraph(cmd *cobra.Command, path string, ticks int, profile, showOut bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read graph: %w", err)
	}
	if err := graph.ValidateDocument(data); err != nil {
		return err
	}

	g, err := graph.Parse(data, graph.DefaultRegistry())
	if err != nil {
		return err
	}

	opts := []engine.Option{
		engine.WithRecompiler(func(g *graph.Graph) error { return g.Compile() }),
	}

	if profile {
		repo, err := storage.NewSQLiteProfileRepositoryWithPath(DatabasePath())
		if err != nil {
			return fmt.Errorf("failed to open profile database: %w", err)
		}
		defer func() { _ = repo.Close() }()
		opts = append(opts, engine.WithLogger(engine.NewLogger(repo)))
	}

	eng := engine.New(g, opts...)
	ec := graph.NewExecContext(g, cmd.OutOrStdout())

	for i := 0; i < ticks; i++ {
		state, err := eng.Tick(context.Background(), ec)
		if err != nil {
			return fmt.Errorf("tick %d failed: %w", i+1, err)
		}
		for state == engine.TickPaused {
			// The CLI has no interactive debugger; resume immediately.
			state, err = eng.Resume(context.Background())
			if err != nil {
				return fmt.Errorf("tick %d failed: %w", i+1, err)
			}
		}
	}

	stats := eng.LastTick()
	cs := eng.CacheStats()
	fmt.Fprintf(cmd.OutOrStdout(), "ticks: %d  nodes/tick: %d  last tick: %s\n",
		ticks, stats.NodesExecuted, stats.Duration)
	fmt.Fprintf(cmd.OutOrStdout(), "cache: %d hits, %d misses (%.1f%% hit rate)\n",
		cs.Hits, cs.Misses, cs.HitRate*100)

	if showOut {
		printOutputs(cmd, g)
	}

	return nil
}

func printOutputs(cmd *cobra.Command, g *graph.Graph) {
	for _, n := range g.Nodes {
		if len(n.Outputs) == 0 {
			continue
		}
		label := n.Label
		if label == "" {
			label = fmt.Sprintf("node-%d", n.ID)
		}
		for _, pin := range n.Outputs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s.%s = %s\n", label, pin.Name, pin.Value)
		}
	}
}
