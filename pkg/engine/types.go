package engine

import (
	"time"

	"github.com/sabinadams/aurora/pkg/builder"
)

// RunStatus represents the outcome of a consolidation run.
type RunStatus string

const (
	// RunStatusSucceeded indicates the schema was consolidated (and written,
	// unless the run was a dry run).
	RunStatusSucceeded RunStatus = "succeeded"

	// RunStatusFailed indicates the run stopped on an error.
	RunStatusFailed RunStatus = "failed"

	// RunStatusNoInput indicates the input globs matched no files.
	RunStatusNoInput RunStatus = "no_input"

	// RunStatusDrift indicates a check run found the output out of date.
	RunStatusDrift RunStatus = "drift"
)

// RunOptions adjusts a single run on top of its configuration.
type RunOptions struct {
	// DryRun consolidates without writing output.
	DryRun bool

	// Check compares the consolidated schema with the existing output
	// instead of writing it.
	Check bool

	// StrictEnums overrides the configured enum strictness when set.
	StrictEnums *bool

	// Lint overrides the configured policy evaluation when set.
	Lint *bool

	// Output overrides the configured output target when not empty.
	Output string
}

// RunReport describes a finished run.
type RunReport struct {
	// ID is the unique identifier for this run.
	ID string `json:"id"`

	// Status is the outcome of the run.
	Status RunStatus `json:"status"`

	// Files lists the matched fragment files in input order.
	Files []string `json:"files"`

	// Fragments is the number of fragments registered.
	Fragments int `json:"fragments"`

	// Declarations is the number of declarations in the aggregate schema.
	Declarations int `json:"declarations"`

	// Warnings lists non-fatal consolidation findings.
	Warnings []builder.Warning `json:"warnings,omitempty"`

	// Violations lists policy findings, if policies were evaluated.
	Violations []PolicyViolation `json:"violations,omitempty"`

	// Output is the resolved output target.
	Output string `json:"output"`

	// Source is the canonical text of the aggregate schema.
	Source []byte `json:"-"`

	// Written reports whether the output target was written.
	Written bool `json:"written"`

	// Drift reports whether a check run found the output out of date.
	Drift bool `json:"drift,omitempty"`

	// StartedAt is when the run started.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`
}

// PolicyResult represents the result of policy evaluation.
type PolicyResult struct {
	// Allowed is false when any violation has error or critical severity.
	Allowed bool `json:"allowed"`

	// Violations lists policy violations.
	Violations []PolicyViolation `json:"violations,omitempty"`

	// Warnings lists problems evaluating individual policies.
	Warnings []string `json:"warnings,omitempty"`

	// EvaluatedPolicies is the number of policies evaluated.
	EvaluatedPolicies int `json:"evaluated_policies"`

	// EvaluatedAt is when the policy was evaluated.
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// PolicyViolation represents a single policy violation.
type PolicyViolation struct {
	// Policy is the policy name that was violated.
	Policy string `json:"policy"`

	// Declaration names the offending declaration, e.g. "model User".
	Declaration string `json:"declaration,omitempty"`

	// Message is a human-readable violation message.
	Message string `json:"message"`

	// Severity is the violation severity (info, warning, error, critical).
	Severity string `json:"severity"`
}

// Blocking reports whether the violation fails a run.
func (v PolicyViolation) Blocking() bool {
	return v.Severity == "error" || v.Severity == "critical"
}

// RunRecord is a run as kept in the history store.
type RunRecord struct {
	ID           string        `json:"id"`
	Status       RunStatus     `json:"status"`
	ConfigPath   string        `json:"config_path"`
	Output       string        `json:"output"`
	Fragments    int           `json:"fragments"`
	Declarations int           `json:"declarations"`
	Warnings     int           `json:"warnings"`
	ErrorCode    string        `json:"error_code,omitempty"`
	Error        string        `json:"error,omitempty"`
	Checksum     string        `json:"checksum,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}
