package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sabinadams/aurora/pkg/schema"
	"github.com/sabinadams/aurora/pkg/schema/parser"
)

// ReadError reports a fragment file that could not be read.
type ReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read fragment %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// Loader reads and parses fragment files.
type Loader struct {
	logger zerolog.Logger
	base   string
}

// NewLoader creates a loader. Origins of fragments below base are reported
// relative to it; an empty base keeps paths as given.
func NewLoader(logger zerolog.Logger, base string) *Loader {
	return &Loader{
		logger: logger.With().Str("component", "source").Logger(),
		base:   base,
	}
}

// Load reads, parses and validates every path in order. It stops at the
// first failure: a *ReadError when a file cannot be read, or the
// *schema.DiagnosticsError of the first invalid fragment.
func (l *Loader) Load(ctx context.Context, paths []string) ([]schema.Fragment, error) {
	fragments := make([]schema.Fragment, 0, len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fragment, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, fragment)
	}

	l.logger.Debug().
		Int("fragments", len(fragments)).
		Msg("Fragments loaded")

	return fragments, nil
}

// LoadFile reads and parses a single fragment.
func (l *Loader) LoadFile(path string) (schema.Fragment, error) {
	origin := l.Origin(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Fragment{}, &ReadError{Path: origin, Err: err}
	}

	fragment, err := parser.ParseFragment(origin, string(data))
	if err != nil {
		return schema.Fragment{}, err
	}

	l.logger.Debug().
		Str("origin", origin).
		Int("declarations", fragment.Document.Len()).
		Msg("Fragment parsed")

	return fragment, nil
}

// Origin returns the name a fragment is reported under.
func (l *Loader) Origin(path string) string {
	if l.base == "" {
		return path
	}
	rel, err := filepath.Rel(l.base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
