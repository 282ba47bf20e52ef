package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ErrDrift is returned by build --check when the output is out of date.
var ErrDrift = errors.New("consolidated schema differs from the output")

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
	logFile    string
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aurora",
		Short: "Aurora - Prisma schema consolidation",
		Long: `Aurora consolidates a Prisma schema split across many files into a single
canonical schema file.

Fragments are matched by the glob patterns of aurora.config.json and merged
in order:
  - one datasource, shared by every fragment
  - generators deduplicated by name
  - enum values unioned in first-seen order
  - model and composite type fields unioned
  - conflicting declarations fail with both file names`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: aurora.config.json in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a file instead of stderr")

	rootCmd.AddCommand(newBuildCommand(version))
	rootCmd.AddCommand(newValidateCommand(version))
	rootCmd.AddCommand(newLintCommand(version))
	rootCmd.AddCommand(newWatchCommand(version))
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}
