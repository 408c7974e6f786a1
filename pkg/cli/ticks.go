package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/gonodes/pkg/domain/types"
	"github.com/dshills/gonodes/pkg/storage"
)

// NewTicksCommand creates the ticks command, listing persisted tick
// profiles from the database.
func NewTicksCommand() *cobra.Command {
	var (
		graphID string
		limit   int
		timings bool
	)

	cmd := &cobra.Command{
		Use:   "ticks [tick-id]",
		Short: "List persisted tick profiles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := storage.NewSQLiteProfileRepositoryWithPath(DatabasePath())
			if err != nil {
				return fmt.Errorf("failed to open profile database: %w", err)
			}
			defer func() { _ = repo.Close() }()

			if len(args) == 1 && timings {
				return showTimings(cmd, repo, types.TickID(args[0]))
			}

			profiles, err := repo.ListTicks(types.GraphID(graphID), limit)
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no persisted ticks")
				return nil
			}

			for _, p := range profiles {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %s  nodes=%d  cache=%d/%d  %s\n",
					p.StartedAt.Format("2006-01-02 15:04:05"), p.GraphName, p.ID,
					p.NodesExecuted, p.CacheHits, p.CacheMisses, p.Duration)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&graphID, "graph", "", "Filter by graph ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of ticks to list")
	cmd.Flags().BoolVar(&timings, "timings", false, "Show per-node timings for the given tick ID")

	return cmd
}

func showTimings(cmd *cobra.Command, repo *storage.SQLiteProfileRepository, tickID types.TickID) error {
	rows, err := repo.TickTimings(tickID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no timings for tick", tickID)
		return nil
	}
	for _, r := range rows {
		label := r.Label
		if label == "" {
			label = fmt.Sprintf("node-%d", r.Node)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-16s runs=%d  last=%s\n",
			label, r.Type, r.ExecCount, r.LastExecution)
	}
	return nil
}
