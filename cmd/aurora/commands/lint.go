package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sabinadams/aurora/pkg/engine"
)

func newLintCommand(version string) *cobra.Command {
	var (
		disable []string
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Evaluate schema policies on the consolidated schema",
		Long: `Consolidate the fragments and evaluate the built-in and configured Rego
policies on the result. Violations of error or critical severity fail the
command; warnings and infos are reported only.

Built-in policies:
  - model-primary-key     every model declares an @id, @@id or unique field
  - datasource-required   the schema declares a datasource
  - datasource-url-env    connection URLs are read with env()
  - naming-conventions    PascalCase models and enums, UPPER_CASE values`,
		Example: `  # Lint the current project
  aurora lint

  # Skip a built-in policy
  aurora lint --disable naming-conventions

  # Show the loaded policies
  aurora lint --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, version)
			if err != nil {
				return err
			}
			defer a.close()

			for _, name := range disable {
				if err := a.policies.DisablePolicy(name); err != nil {
					return err
				}
			}

			if list {
				policies := a.policies.ListPolicies()
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), policies)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tSEVERITY\tENABLED\tDESCRIPTION")
				for _, p := range policies {
					fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", p.Name, p.Severity, p.Enabled, p.Description)
				}
				return w.Flush()
			}

			lint := true
			report, runErr := a.run(cmd.Context(), engine.RunOptions{DryRun: true, Lint: &lint})
			if jsonOutput {
				if err := printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), report, runErr); err != nil {
					return err
				}
				return runErr
			}

			if report != nil {
				printViolations(cmd.OutOrStdout(), report.Violations)
				if runErr == nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "✓ %d declaration(s) checked, %d finding(s)\n",
						report.Declarations, len(report.Violations))
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringSliceVar(&disable, "disable", nil, "policies to skip")
	cmd.Flags().BoolVar(&list, "list", false, "list the loaded policies and exit")

	return cmd
}
