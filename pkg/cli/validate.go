package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/gonodes/pkg/graph"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <graph.yaml>",
		Short: "Validate a graph document without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
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
			if err := g.Compile(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d nodes, %d connections)\n",
				args[0], len(g.Nodes), len(g.Connections))
			return nil
		},
	}
}

// NewTypesCommand creates the types command, listing registered node types.
func NewTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the builtin node types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := graph.DefaultRegistry()
			for _, name := range reg.Names() {
				t, _ := reg.TypeByName(name)
				purity := "impure"
				if t.Pure {
					purity = "pure"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-10s %s  in=%d out=%d\n",
					t.Name, t.Category, purity, len(t.Inputs), len(t.Outputs))
			}
			return nil
		},
	}
}
