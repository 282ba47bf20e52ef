package source

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves patterns against baseDir and returns the matching files.
// Patterns are expanded in the given order; the matches of a single pattern
// are sorted lexicographically. A file matched by several patterns appears
// once, at its first position. Paths in exclude are never returned.
func Expand(baseDir string, patterns []string, exclude ...string) ([]string, error) {
	skip := make(map[string]struct{}, len(exclude))
	for _, p := range exclude {
		if p == "" {
			continue
		}
		skip[absolute(baseDir, p)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range patterns {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(baseDir, pattern)
		}

		if !doublestar.ValidatePathPattern(full) {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}

		matches, err := doublestar.FilepathGlob(full, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand glob pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)

		for _, match := range matches {
			path := absolute(baseDir, match)
			if _, ok := skip[path]; ok {
				continue
			}
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	return files, nil
}

func absolute(baseDir, path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Roots returns the static directory prefix of every pattern, the part
// before the first glob metacharacter. Watcher watches these recursively.
func Roots(baseDir string, patterns []string) []string {
	seen := make(map[string]struct{})
	var roots []string
	for _, pattern := range patterns {
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(baseDir, pattern)
		}
		base, _ := doublestar.SplitPattern(filepath.ToSlash(full))
		root := absolute(baseDir, filepath.FromSlash(base))
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		roots = append(roots, root)
	}
	return roots
}
