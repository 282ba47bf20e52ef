package engine

import (
	"context"

	"github.com/sabinadams/aurora/pkg/schema"
)

// FragmentSource reads fragment files into parsed fragments.
type FragmentSource interface {
	// Load parses paths in order and fails on the first invalid file.
	Load(ctx context.Context, paths []string) ([]schema.Fragment, error)
}

// Emitter writes the consolidated schema to an output target.
type Emitter interface {
	// Emit writes content to target.
	Emit(ctx context.Context, target string, content []byte) error

	// Check reports whether target already holds exactly content.
	Check(ctx context.Context, target string, content []byte) (bool, error)
}

// PolicyEngine enforces lint policies on the aggregate schema.
type PolicyEngine interface {
	// Evaluate evaluates policies against a document.
	Evaluate(ctx context.Context, doc *schema.Document) (*PolicyResult, error)

	// LoadPolicies loads policy files.
	LoadPolicies(ctx context.Context, paths []string) error
}

// HistoryStore persists run records.
type HistoryStore interface {
	// RecordRun saves a finished run.
	RecordRun(ctx context.Context, record *RunRecord) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)

	// Close releases the store.
	Close() error
}

// Metrics records run-level measurements. Per-declaration outcomes are
// observed through builder.Observer.
type Metrics interface {
	// RecordRun records a finished run.
	RecordRun(report *RunReport)

	// RecordFragment records a registered fragment.
	RecordFragment()
}
