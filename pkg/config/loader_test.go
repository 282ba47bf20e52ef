package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoader_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "aurora.config.json",
			content: `{
  "files": ["./prisma/**/*.prisma"],
  "output": "./prisma/schema.prisma",
  "strictEnums": true
}`,
		},
		{
			name: "cue",
			file: "aurora.config.cue",
			content: `
files: ["./prisma/**/*.prisma"]
output: "./prisma/schema.prisma"
strictEnums: true
`,
		},
		{
			name: "yaml",
			file: "aurora.config.yaml",
			content: `
files:
  - ./prisma/**/*.prisma
output: ./prisma/schema.prisma
strictEnums: true
`,
		},
		{
			name: "starlark",
			file: "aurora.config.star",
			content: `
files = ["./prisma/**/*.prisma"]
output = "./prisma/schema.prisma"
strictEnums = True
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			dir := filepath.Dir(path)

			cfg, err := NewLoader().Load(context.Background(), path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if len(cfg.Files) != 1 || cfg.Files[0] != filepath.Join(dir, "prisma/**/*.prisma") {
				t.Errorf("unexpected files: %v", cfg.Files)
			}
			if cfg.Output != filepath.Join(dir, "prisma/schema.prisma") {
				t.Errorf("unexpected output: %s", cfg.Output)
			}
			if !cfg.StrictEnums {
				t.Error("expected strictEnums to be set")
			}
			if cfg.Dir != dir {
				t.Errorf("expected dir %s, got %s", dir, cfg.Dir)
			}
		})
	}
}

func TestLoader_Defaults(t *testing.T) {
	path := writeConfig(t, "aurora.config.json", `{"files": ["a.prisma"], "output": "-"}`)

	cfg, err := NewLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "-" {
		t.Errorf("stdout output must not be resolved, got %s", cfg.Output)
	}
	if cfg.StrictEnums || cfg.Lint || cfg.History.Enabled || cfg.Tracing.Enabled {
		t.Error("expected optional features to be disabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Tracing.SamplingRate != 1.0 || cfg.Tracing.Exporter != "stdout" {
		t.Errorf("unexpected tracing defaults: %+v", cfg.Tracing)
	}
	if !cfg.Remote.StrictHostKeyChecking {
		t.Error("expected strict host key checking by default")
	}
	if d, _ := cfg.Remote.TimeoutDuration(); d != 30*time.Second {
		t.Errorf("expected 30s remote timeout, got %v", d)
	}
	if cfg.History.Path != filepath.Join(cfg.Dir, ".aurora/history.db") {
		t.Errorf("expected resolved history path, got %s", cfg.History.Path)
	}
}

func TestLoader_RemoteOutputUntouched(t *testing.T) {
	path := writeConfig(t, "aurora.config.json", `{
  "files": ["/abs/schema/*.prisma"],
  "output": "sftp://deploy@db.internal:2222/srv/app/schema.prisma"
}`)

	cfg, err := NewLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Output != "sftp://deploy@db.internal:2222/srv/app/schema.prisma" {
		t.Errorf("remote output must not be resolved, got %s", cfg.Output)
	}
	if cfg.Files[0] != "/abs/schema/*.prisma" {
		t.Errorf("absolute pattern must not be resolved, got %s", cfg.Files[0])
	}
}

func TestLoader_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantPath string
	}{
		{
			name:    "missing files",
			file:    "aurora.config.json",
			content: `{"output": "out.prisma"}`,
		},
		{
			name:    "empty files",
			file:    "aurora.config.json",
			content: `{"files": [], "output": "out.prisma"}`,
		},
		{
			name:    "missing output",
			file:    "aurora.config.json",
			content: `{"files": ["a.prisma"]}`,
		},
		{
			name:    "unknown key",
			file:    "aurora.config.json",
			content: `{"files": ["a.prisma"], "output": "out.prisma", "outptu": "x"}`,
		},
		{
			name:    "wrong type",
			file:    "aurora.config.yaml",
			content: "files: a.prisma\noutput: out.prisma\n",
		},
		{
			name:     "bad remote timeout",
			file:     "aurora.config.json",
			content:  `{"files": ["a.prisma"], "output": "out.prisma", "remote": {"timeout": "soon"}}`,
			wantPath: "remote.timeout",
		},
		{
			name:     "history without path",
			file:     "aurora.config.json",
			content:  `{"files": ["a.prisma"], "output": "out.prisma", "history": {"enabled": true, "path": ""}}`,
			wantPath: "History.Path",
		},
		{
			name:    "malformed json",
			file:    "aurora.config.json",
			content: `{"files": [`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)

			_, err := NewLoader().Load(context.Background(), path)
			if err == nil {
				t.Fatal("expected error")
			}

			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if cfgErr.Path != path {
				t.Errorf("expected error path %s, got %s", path, cfgErr.Path)
			}
			if tt.wantPath != "" {
				found := false
				for _, ve := range cfgErr.Errors {
					if ve.Path == tt.wantPath {
						found = true
					}
				}
				if !found {
					t.Errorf("expected a validation error at %s, got %v", tt.wantPath, cfgErr.Errors)
				}
			}
		})
	}
}

func TestLoader_UnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := NewLoader().Load(context.Background(), path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped not-exist error, got %v", err)
	}
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "aurora.config.toml", `files = ["a.prisma"]`)

	_, err := NewLoader().Load(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "unsupported configuration format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	if got := Resolve(dir); got != filepath.Join(dir, DefaultFileName) {
		t.Errorf("expected default file name, got %s", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "aurora.config.yaml"), []byte("files: [a]\noutput: b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Resolve(dir); got != filepath.Join(dir, "aurora.config.yaml") {
		t.Errorf("expected yaml config, got %s", got)
	}

	if err := os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Resolve(dir); got != filepath.Join(dir, DefaultFileName) {
		t.Errorf("expected json config to win, got %s", got)
	}
}

func TestError_Format(t *testing.T) {
	err := &Error{
		Path: "aurora.config.json",
		Errors: []ValidationError{
			{File: "aurora.config.json", Line: 3, Column: 5, Path: "output", Message: "incomplete value string"},
			{Path: "remote.timeout", Message: "invalid duration"},
		},
	}

	want := "configuration aurora.config.json is invalid: aurora.config.json:3:5: output: incomplete value string; remote.timeout: invalid duration"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
