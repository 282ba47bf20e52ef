package commands

import (
	"github.com/spf13/cobra"

	"github.com/sabinadams/aurora/pkg/engine"
)

func newValidateCommand(version string) *cobra.Command {
	var strictEnums bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse and consolidate fragments without writing output",
		Long: `Parse every fragment matched by the configuration and consolidate them,
reporting the first syntax error or conflict. No output is written and no
policies are evaluated.`,
		Example: `  # Validate the fragments of the current project
  aurora validate

  # Validate with strict enum merging
  aurora validate --strict-enums`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, version)
			if err != nil {
				return err
			}
			defer a.close()

			lint := false
			opts := engine.RunOptions{DryRun: true, Lint: &lint}
			if cmd.Flags().Changed("strict-enums") {
				opts.StrictEnums = &strictEnums
			}

			report, runErr := a.run(cmd.Context(), opts)
			if err := printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), report, runErr); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&strictEnums, "strict-enums", false, "treat differing enum values as conflicts")

	return cmd
}
