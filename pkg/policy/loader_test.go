package policy

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writePolicyFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestLoadFromFile_Rego(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	regoContent := `# Models must not be called Legacy
# severity: error
package custom.legacy

import rego.v1

deny contains "no legacy models" if {
	some model in input.models
	model.name == "Legacy"
}`
	policyFile := writePolicyFile(t, t.TempDir(), "no-legacy.rego", regoContent)

	policy, err := loader.loadFromFile(policyFile)
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}

	if policy.Name != "no-legacy" {
		t.Errorf("Expected name 'no-legacy', got '%s'", policy.Name)
	}
	if policy.Rego != regoContent {
		t.Error("Rego content doesn't match")
	}
	if policy.Description != "Models must not be called Legacy" {
		t.Errorf("Unexpected description: %q", policy.Description)
	}
	if policy.Severity != SeverityError {
		t.Errorf("Expected severity from comment, got %s", policy.Severity)
	}
	if !policy.Enabled {
		t.Error("Policy should be enabled by default")
	}
	if policy.Metadata["source"] != policyFile {
		t.Errorf("Expected source metadata, got %v", policy.Metadata)
	}
}

func TestLoadFromFile_RegoDefaultSeverity(t *testing.T) {
	loader := NewLoader(zerolog.Nop())
	policyFile := writePolicyFile(t, t.TempDir(), "plain.rego", "package plain\n")

	policy, err := loader.loadFromFile(policyFile)
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}
	if policy.Severity != SeverityWarning {
		t.Errorf("Expected warning severity, got %s", policy.Severity)
	}
}

func TestLoadFromFile_JSON(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	policy := Policy{
		Name:        "test-json-policy",
		Description: "A test policy",
		Rego:        "package test\n\nimport rego.v1\n\ndeny contains \"x\" if false\n",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"test"},
	}
	data, err := json.Marshal(policy)
	if err != nil {
		t.Fatalf("Failed to marshal policy: %v", err)
	}
	policyFile := writePolicyFile(t, t.TempDir(), "test-policy.json", string(data))

	loaded, err := loader.loadFromFile(policyFile)
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}

	if loaded.Name != policy.Name {
		t.Errorf("Expected name '%s', got '%s'", policy.Name, loaded.Name)
	}
	if loaded.Description != policy.Description {
		t.Errorf("Expected description '%s', got '%s'", policy.Description, loaded.Description)
	}
	if loaded.Severity != policy.Severity {
		t.Errorf("Expected severity '%s', got '%s'", policy.Severity, loaded.Severity)
	}
	if loaded.LoadedAt.IsZero() {
		t.Error("Expected LoadedAt to be set")
	}
}

func TestLoadFromFile_InvalidJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed", content: `{"name": `},
		{name: "no name", content: `{"rego": "package x"}`},
		{name: "no rego", content: `{"name": "x"}`},
		{name: "bad severity", content: `{"name": "x", "rego": "package x", "severity": "fatal"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(zerolog.Nop())
			policyFile := writePolicyFile(t, t.TempDir(), "policy.json", tt.content)

			if _, err := loader.loadFromFile(policyFile); err == nil {
				t.Error("Expected error for invalid JSON policy")
			}
		})
	}
}

func TestLoadFromFile_UnsupportedType(t *testing.T) {
	loader := NewLoader(zerolog.Nop())
	policyFile := writePolicyFile(t, t.TempDir(), "policy.txt", "package x")

	_, err := loader.loadFromFile(policyFile)
	if err == nil || !strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("Expected unsupported file type error, got %v", err)
	}
}

func TestLoadFromDirectory_Recursive(t *testing.T) {
	loader := NewLoader(zerolog.Nop())
	tmpDir := t.TempDir()

	writePolicyFile(t, tmpDir, "policy1.rego", "package policy1\n")
	writePolicyFile(t, tmpDir, "nested/policy2.rego", "package policy2\n")
	writePolicyFile(t, tmpDir, "nested/deeper/policy3.json", `{"name": "policy3", "rego": "package policy3"}`)
	writePolicyFile(t, tmpDir, "nested/README.md", "# not a policy")
	writePolicyFile(t, tmpDir, "broken.json", `{`)

	policies, err := loader.loadFromDirectory(tmpDir)
	if err != nil {
		t.Fatalf("Failed to load directory: %v", err)
	}

	if len(policies) != 3 {
		t.Fatalf("Expected 3 policies, got %d", len(policies))
	}

	found := make(map[string]bool)
	for _, p := range policies {
		found[p.Name] = true
	}
	for _, name := range []string{"policy1", "policy2", "policy3"} {
		if !found[name] {
			t.Errorf("Expected policy %s to be loaded", name)
		}
	}
}

func TestLoadFromPaths(t *testing.T) {
	loader := NewLoader(zerolog.Nop())
	tmpDir := t.TempDir()

	file := writePolicyFile(t, tmpDir, "single.rego", "package single\n")
	dir := filepath.Join(tmpDir, "dir")
	writePolicyFile(t, dir, "a.rego", "package a\n")
	writePolicyFile(t, dir, "b.rego", "package b\n")

	policies, err := loader.LoadFromPaths(context.Background(), []string{file, dir})
	if err != nil {
		t.Fatalf("Failed to load paths: %v", err)
	}
	if len(policies) != 3 {
		t.Errorf("Expected 3 policies, got %d", len(policies))
	}
}

func TestLoadFromPath_NonExistent(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	_, err := loader.LoadFromPaths(context.Background(), []string{filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Error("Expected error for non-existent path")
	}
}

func TestLoadFromPaths_Cancelled(t *testing.T) {
	loader := NewLoader(zerolog.Nop())
	file := writePolicyFile(t, t.TempDir(), "single.rego", "package single\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := loader.LoadFromPaths(ctx, []string{file}); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestExtractDescription(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "single line comment",
			content:  "# This is a test policy\npackage test",
			expected: "This is a test policy",
		},
		{
			name:     "multi-line comment",
			content:  "# This is a test policy\n# that spans multiple lines\npackage test",
			expected: "This is a test policy that spans multiple lines",
		},
		{
			name:     "severity comment skipped",
			content:  "# Check names\n# severity: info\npackage test",
			expected: "Check names",
		},
		{
			name:     "no comment",
			content:  "package test\ndeny contains \"x\" if false",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loader.extractDescription(tt.content); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestExtractSeverity(t *testing.T) {
	tests := []struct {
		content  string
		expected Severity
	}{
		{content: "# severity: critical\npackage x", expected: SeverityCritical},
		{content: "#Severity:  Error\npackage x", expected: SeverityError},
		{content: "package x", expected: ""},
	}

	for _, tt := range tests {
		if got := extractSeverity(tt.content); got != tt.expected {
			t.Errorf("extractSeverity(%q) = %q, want %q", tt.content, got, tt.expected)
		}
	}
}

func TestCache(t *testing.T) {
	loader := NewLoader(zerolog.Nop())
	policyFile := writePolicyFile(t, t.TempDir(), "cached.rego", "# first\npackage cached\n")

	if _, err := loader.loadFromFile(policyFile); err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}
	if len(loader.cache) != 1 {
		t.Fatalf("Expected 1 cached policy, got %d", len(loader.cache))
	}

	// A changed file is read again.
	if err := os.WriteFile(policyFile, []byte("# second\npackage cached\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(policyFile, later, later); err != nil {
		t.Fatal(err)
	}

	policy, err := loader.loadFromFile(policyFile)
	if err != nil {
		t.Fatalf("Failed to load policy: %v", err)
	}
	if policy.Description != "second" {
		t.Errorf("Expected reloaded description, got %q", policy.Description)
	}

	loader.ClearCache()
	if len(loader.cache) != 0 {
		t.Errorf("Expected empty cache, got %d entries", len(loader.cache))
	}
}
