package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sabinadams/aurora/pkg/engine"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// runSummary is the JSON form of a run: the report plus its failure.
type runSummary struct {
	*engine.RunReport
	Error *engine.Error `json:"error,omitempty"`
}

// printReport reports a finished run. JSON goes to out; the text summary
// goes to errOut so it never mixes with a schema written to stdout.
// Warnings and violations are already logged by the runner.
func printReport(out, errOut io.Writer, report *engine.RunReport, runErr error) error {
	if report == nil {
		return nil
	}

	if jsonOutput {
		summary := runSummary{RunReport: report}
		var e *engine.Error
		if errors.As(runErr, &e) {
			summary.Error = e
		}
		return printJSON(out, summary)
	}

	if runErr != nil {
		return nil
	}

	switch {
	case report.Drift:
		fmt.Fprintf(errOut, "✗ %s is out of date\n", report.Output)
	case report.Written:
		fmt.Fprintf(errOut, "✓ Consolidated %d fragment(s) into %s (%d declarations, %s)\n",
			report.Fragments, target(report.Output), report.Declarations, report.Duration.Round(time.Microsecond))
	default:
		fmt.Fprintf(errOut, "✓ %d fragment(s) consolidate into %d declarations\n",
			report.Fragments, report.Declarations)
	}
	return nil
}

func printViolations(w io.Writer, violations []engine.PolicyViolation) {
	for _, v := range violations {
		subject := v.Declaration
		if subject == "" {
			subject = "schema"
		}
		fmt.Fprintf(w, "%s: [%s] %s: %s\n", strings.ToLower(v.Severity), v.Policy, subject, v.Message)
	}
}

func target(output string) string {
	if output == "" || output == "-" {
		return "stdout"
	}
	return output
}
