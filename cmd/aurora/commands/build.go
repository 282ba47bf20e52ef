package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sabinadams/aurora/pkg/config"
	"github.com/sabinadams/aurora/pkg/engine"
)

func newBuildCommand(version string) *cobra.Command {
	var (
		output      string
		dryRun      bool
		check       bool
		strictEnums bool
		lint        bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Consolidate schema fragments into the output schema",
		Long: `Consolidate the schema fragments matched by the configuration and write
the canonical schema to the configured output.

The output is written atomically and only when every fragment parses and
consolidates; a conflict names the declaration and both files and leaves
the previous output untouched.

With --check nothing is written: the command exits with status 2 when the
output differs from the consolidated schema.`,
		Example: `  # Build with aurora.config.json from the working directory
  aurora build

  # Print the schema instead of writing it
  aurora build --output -

  # Fail CI when the committed schema is stale
  aurora build --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun && check {
				return fmt.Errorf("--dry-run and --check are mutually exclusive")
			}

			a, err := setup(cmd, version)
			if err != nil {
				return err
			}
			defer a.close()

			target := a.cfg.Output
			if output != "" {
				target = output
			}
			if jsonOutput && !dryRun && config.IsStdout(target) {
				return fmt.Errorf("--json cannot be combined with a schema written to stdout")
			}

			opts := engine.RunOptions{
				DryRun: dryRun,
				Check:  check,
				Output: output,
			}
			if cmd.Flags().Changed("strict-enums") {
				opts.StrictEnums = &strictEnums
			}
			if cmd.Flags().Changed("lint") {
				opts.Lint = &lint
			}

			log.Debug().
				Bool("dry_run", dryRun).
				Bool("check", check).
				Str("output", output).
				Msg("Building schema")

			report, runErr := a.run(cmd.Context(), opts)
			if err := printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), report, runErr); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}
			if report.Drift {
				return fmt.Errorf("%w: %s", ErrDrift, report.Output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output target overriding the configuration ("-" for stdout)`)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "consolidate without writing output")
	cmd.Flags().BoolVar(&check, "check", false, "exit with status 2 when the output is out of date")
	cmd.Flags().BoolVar(&strictEnums, "strict-enums", false, "treat differing enum values as conflicts")
	cmd.Flags().BoolVar(&lint, "lint", false, "evaluate schema policies before writing")

	return cmd
}
