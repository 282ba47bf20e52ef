package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sabinadams/aurora/pkg/engine"
	"github.com/sabinadams/aurora/pkg/stores"
)

func newHistoryCommand() *cobra.Command {
	var (
		limit int
		prune int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded consolidation runs",
		Long: `List the runs kept in the history store, newest first. History is
recorded when "history.enabled" is set in the configuration.`,
		Example: `  # Show the last 20 runs
  aurora history

  # Keep only the 100 most recent runs
  aurora history --prune 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return engine.NewPermanentError(engine.ErrCodeConfigurationUnreadable,
					"run history is disabled; set history.enabled in the configuration", nil).WithPath(cfg.Path)
			}

			store, err := stores.Open(ctx, stores.Config{Path: cfg.History.Path})
			if err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}
			defer store.Close()

			if cmd.Flags().Changed("prune") {
				removed, err := store.PruneRuns(ctx, prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "✓ Removed %d run(s)\n", removed)
			}

			runs, err := store.ListRuns(ctx, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), runs)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tFRAGMENTS\tDECLARATIONS\tDURATION\tERROR")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					run.Status,
					run.Fragments,
					run.Declarations,
					run.Duration.Round(time.Millisecond),
					run.ErrorCode,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show (0 for all)")
	cmd.Flags().IntVar(&prune, "prune", 0, "delete all but the given number of most recent runs")

	return cmd
}
