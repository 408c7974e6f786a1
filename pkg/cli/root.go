// Package cli implements the gonodes command line interface.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	// Version is the current version of gonodes
	Version = "1.0.0"
)

// Config holds the global configuration for the gonodes CLI
type Config struct {
	ConfigDir string
	Debug     bool
}

// GlobalConfig is the shared configuration instance
var GlobalConfig = &Config{}

// NewRootCommand creates the root cobra command for gonodes
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gonodes",
		Short: "gonodes - node graph execution engine",
		Long: `gonodes evaluates directed graphs of computational nodes: typed pins,
connections, and a precompiled topological order. It propagates values along
connections each tick, memoizes pure sub-computations, and records per-node
and per-tick profiles for offline inspection.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			if GlobalConfig.Debug {
				log.SetOutput(os.Stderr)
				log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
			} else {
				log.SetOutput(io.Discard)
			}

			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&GlobalConfig.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&GlobalConfig.ConfigDir, "config-dir", "", "Configuration directory (default: ~/.gonodes)")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewTicksCommand())
	cmd.AddCommand(NewTypesCommand())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// initConfig resolves the configuration directory and ensures it exists.
func initConfig() error {
	if GlobalConfig.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		GlobalConfig.ConfigDir = filepath.Join(homeDir, ".gonodes")
	}

	if err := os.MkdirAll(GlobalConfig.ConfigDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// DatabasePath returns the profile database path inside the config dir.
func DatabasePath() string {
	return filepath.Join(GlobalConfig.ConfigDir, "gonodes.db")
}
