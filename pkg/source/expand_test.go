package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
}

func rel(t *testing.T, base string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(base, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestExpand(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	touch(t, dir,
		"prisma/base.prisma",
		"prisma/users/user.prisma",
		"prisma/users/account.prisma",
		"prisma/billing/invoice.prisma",
		"prisma/schema.prisma",
		"prisma/notes.txt",
	)

	tests := []struct {
		name     string
		patterns []string
		exclude  []string
		want     []string
	}{
		{
			name:     "recursive glob is sorted",
			patterns: []string{"prisma/**/*.prisma"},
			exclude:  []string{"prisma/schema.prisma"},
			want: []string{
				"prisma/base.prisma",
				"prisma/billing/invoice.prisma",
				"prisma/users/account.prisma",
				"prisma/users/user.prisma",
			},
		},
		{
			name:     "pattern order is kept",
			patterns: []string{"prisma/users/*.prisma", "prisma/base.prisma"},
			want: []string{
				"prisma/users/account.prisma",
				"prisma/users/user.prisma",
				"prisma/base.prisma",
			},
		},
		{
			name:     "duplicates keep their first position",
			patterns: []string{"prisma/base.prisma", "prisma/*.prisma"},
			exclude:  []string{filepath.Join(dir, "prisma/schema.prisma")},
			want:     []string{"prisma/base.prisma"},
		},
		{
			name:     "no matches",
			patterns: []string{"missing/*.prisma"},
			want:     []string{},
		},
		{
			name:     "absolute pattern",
			patterns: []string{filepath.Join(dir, "prisma/billing/*.prisma")},
			want:     []string{"prisma/billing/invoice.prisma"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Expand(dir, tt.patterns, tt.exclude...)
			require.NoError(t, err)
			require.Equal(t, tt.want, rel(t, dir, files))
		})
	}
}

func TestExpandInvalidPattern(t *testing.T) {
	_, err := Expand(t.TempDir(), []string{"prisma/[a-.prisma"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid glob pattern")
}

func TestRoots(t *testing.T) {
	roots := Roots("/work", []string{
		"prisma/**/*.prisma",
		"prisma/users/*.prisma",
		"/abs/schema.prisma",
		"./prisma/*.prisma",
	})
	require.Equal(t, []string{
		"/work/prisma",
		"/work/prisma/users",
		"/abs",
	}, roots)
}
