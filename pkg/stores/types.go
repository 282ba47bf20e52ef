package stores

import (
	"context"
	"errors"

	"github.com/sabinadams/aurora/pkg/engine"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Store defines the interface for the persistence layer
type Store interface {
	engine.HistoryStore

	// Lifecycle
	Init(ctx context.Context) error
	Migrate(ctx context.Context) error

	// Run operations
	GetRun(ctx context.Context, id string) (*engine.RunRecord, error)
	DeleteRun(ctx context.Context, id string) error
	PruneRuns(ctx context.Context, keep int) (int64, error)

	// Utility
	HealthCheck(ctx context.Context) error
}

var _ Store = (*SQLiteStore)(nil)
