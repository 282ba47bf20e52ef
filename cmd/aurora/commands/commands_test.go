package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sabinadams/aurora/pkg/config"
	"github.com/sabinadams/aurora/pkg/engine"
)

const (
	datasourceFragment = `datasource db {
  provider = "postgresql"
  url      = env("DATABASE_URL")
}
`
	userFragment = `model User {
  id    Int    @id
  email String @unique
}
`
)

// project writes a configuration and fragments into a temporary directory
// and returns the configuration path.
func project(t *testing.T, extra string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg := `{"files": ["schema/*.prisma"], "output": "out/schema.prisma"` + extra + `}`
	path := filepath.Join(dir, config.DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

// execute runs the CLI with args and returns stdout and the command error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand("test", "none", "today")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	t.Logf("stderr:\n%s", stderr.String())
	return stdout.String(), err
}

func outputOf(t *testing.T, cfgPath string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfgPath), "out", "schema.prisma"))
	require.NoError(t, err)
	return string(data)
}

func TestBuild_WritesOutput(t *testing.T) {
	cfg := project(t, "", map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": userFragment,
	})

	_, err := execute(t, "build", "-c", cfg)
	require.NoError(t, err)

	out := outputOf(t, cfg)
	require.Contains(t, out, "datasource db {")
	require.Contains(t, out, "model User {")
	require.Less(t, strings.Index(out, "datasource db"), strings.Index(out, "model User"))
}

func TestBuild_Stdout(t *testing.T) {
	cfg := project(t, "", map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": userFragment,
	})

	stdout, err := execute(t, "build", "-c", cfg, "--output", "-")
	require.NoError(t, err)
	require.Contains(t, stdout, "model User {")

	_, statErr := os.Stat(filepath.Join(filepath.Dir(cfg), "out", "schema.prisma"))
	require.True(t, os.IsNotExist(statErr), "stdout builds must not write the configured output")
}

func TestBuild_JSONReport(t *testing.T) {
	cfg := project(t, "", map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": userFragment,
	})

	stdout, err := execute(t, "build", "-c", cfg, "--json")
	require.NoError(t, err)

	var report struct {
		Status       string   `json:"status"`
		Files        []string `json:"files"`
		Fragments    int      `json:"fragments"`
		Declarations int      `json:"declarations"`
		Written      bool     `json:"written"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Equal(t, "succeeded", report.Status)
	require.Len(t, report.Files, 2)
	require.Equal(t, 2, report.Fragments)
	require.Equal(t, 2, report.Declarations)
	require.True(t, report.Written)
}

func TestBuild_JSONStdout(t *testing.T) {
	cfg := project(t, "", map[string]string{"schema/a.prisma": datasourceFragment})

	stdout, err := execute(t, "build", "-c", cfg, "--json", "--output", "-")
	require.ErrorContains(t, err, "--json")
	require.Empty(t, stdout)

	stdout, err = execute(t, "build", "-c", cfg, "--json", "--output", "-", "--dry-run")
	require.NoError(t, err)
	var report struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Equal(t, "succeeded", report.Status)
}

func TestBuild_RelativeOutputFromOtherDirectory(t *testing.T) {
	cfg := project(t, "", map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": userFragment,
	})
	dir := filepath.Dir(cfg)
	t.Chdir(filepath.Dir(dir))
	output := filepath.Join(filepath.Base(dir), "schema", "out.prisma")

	_, err := execute(t, "build", "-c", cfg, "--output", output)
	require.NoError(t, err)

	edited := strings.Replace(userFragment, "email String @unique", "email String", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema", "b.prisma"), []byte(edited), 0o644))

	_, err = execute(t, "build", "-c", cfg, "--output", output)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "schema", "out.prisma"))
	require.NoError(t, err)
	require.NotContains(t, string(data), "@unique")
}

func TestBuild_Check(t *testing.T) {
	cfg := project(t, "", map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": userFragment,
	})

	_, err := execute(t, "build", "-c", cfg, "--check")
	require.ErrorIs(t, err, ErrDrift, "a missing output is out of date")

	_, err = execute(t, "build", "-c", cfg)
	require.NoError(t, err)

	_, err = execute(t, "build", "-c", cfg, "--check")
	require.NoError(t, err)

	extra := filepath.Join(filepath.Dir(cfg), "schema", "c.prisma")
	require.NoError(t, os.WriteFile(extra, []byte("enum Role {\n  ADMIN\n}\n"), 0o644))

	_, err = execute(t, "build", "-c", cfg, "--check")
	require.ErrorIs(t, err, ErrDrift)
	require.NotContains(t, outputOf(t, cfg), "enum Role", "check must not write")
}

func TestBuild_DryRunAndCheck(t *testing.T) {
	cfg := project(t, "", map[string]string{"schema/a.prisma": datasourceFragment})

	_, err := execute(t, "build", "-c", cfg, "--check", "--dry-run")
	require.Error(t, err)
}

func TestBuild_Conflict(t *testing.T) {
	cfg := project(t, "", map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": `datasource db {
  provider = "mysql"
  url      = env("DATABASE_URL")
}
`,
	})

	_, err := execute(t, "build", "-c", cfg)
	require.Error(t, err)
	require.True(t, engine.IsConflict(err), "expected a conflict, got %v", err)
	require.Equal(t, engine.ErrCodeDatasourceConflict, engine.CodeOf(err))
	require.Contains(t, err.Error(), "schema/a.prisma")
	require.Contains(t, err.Error(), "schema/b.prisma")

	_, statErr := os.Stat(filepath.Join(filepath.Dir(cfg), "out", "schema.prisma"))
	require.True(t, os.IsNotExist(statErr), "a failed build must not write output")
}

func TestBuild_NoInput(t *testing.T) {
	cfg := project(t, "", nil)

	_, err := execute(t, "build", "-c", cfg)
	require.Error(t, err)
	require.True(t, engine.IsInformational(err))
	require.Equal(t, engine.ErrCodeNoInputFragments, engine.CodeOf(err))
}

func TestBuild_MissingConfig(t *testing.T) {
	_, err := execute(t, "build", "-c", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	require.Equal(t, engine.ErrCodeConfigurationUnreadable, engine.CodeOf(err))

	var runErr *engine.Error
	require.True(t, errors.As(err, &runErr))
	require.True(t, strings.HasSuffix(runErr.Path, "missing.json"))
}

func TestBuild_InvalidFragment(t *testing.T) {
	cfg := project(t, "", map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": "model User {\n  id Int @id\n",
	})

	_, err := execute(t, "build", "-c", cfg)
	require.Error(t, err)
	require.Equal(t, engine.ErrCodeFragmentInvalid, engine.CodeOf(err))
}

func TestValidate(t *testing.T) {
	cfg := project(t, "", map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": "model Post {\n  title String\n}\n",
	})

	// Policies are not evaluated by validate, so the missing @id passes.
	_, err := execute(t, "validate", "-c", cfg)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(cfg), "out", "schema.prisma"))
	require.True(t, os.IsNotExist(statErr), "validate must not write output")
}

func TestLint(t *testing.T) {
	cfg := project(t, "", map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": "model Post {\n  title String\n}\n",
	})

	stdout, err := execute(t, "lint", "-c", cfg)
	require.Error(t, err)
	require.Equal(t, engine.ErrCodePolicyViolation, engine.CodeOf(err))
	require.Contains(t, stdout, "[model-primary-key] model Post")

	_, err = execute(t, "lint", "-c", cfg, "--disable", "model-primary-key")
	require.NoError(t, err)
}

func TestLint_List(t *testing.T) {
	cfg := project(t, "", map[string]string{"schema/a.prisma": datasourceFragment})

	stdout, err := execute(t, "lint", "-c", cfg, "--list", "--json", "--disable", "naming-conventions")
	require.NoError(t, err)

	var policies []struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &policies))

	enabled := map[string]bool{}
	for _, p := range policies {
		enabled[p.Name] = p.Enabled
	}
	require.Equal(t, map[string]bool{
		"datasource-required": true,
		"datasource-url-env":  true,
		"model-primary-key":   true,
		"naming-conventions":  false,
	}, enabled)
}

func TestBuild_LintFlag(t *testing.T) {
	cfg := project(t, "", map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": "model Post {\n  title String\n}\n",
	})

	_, err := execute(t, "build", "-c", cfg, "--lint")
	require.Equal(t, engine.ErrCodePolicyViolation, engine.CodeOf(err))

	_, statErr := os.Stat(filepath.Join(filepath.Dir(cfg), "out", "schema.prisma"))
	require.True(t, os.IsNotExist(statErr), "a policy failure must not write output")
}

func TestHistory(t *testing.T) {
	cfg := project(t, `, "history": {"enabled": true, "path": ".aurora/history.db"}`, map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": userFragment,
	})

	_, err := execute(t, "build", "-c", cfg)
	require.NoError(t, err)
	_, err = execute(t, "build", "-c", cfg, "--check")
	require.NoError(t, err)

	stdout, err := execute(t, "history", "-c", cfg, "--json")
	require.NoError(t, err)

	var runs []engine.RunRecord
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 2)
	for _, run := range runs {
		require.Equal(t, engine.RunStatusSucceeded, run.Status)
		require.NotEmpty(t, run.Checksum)
	}
	require.Equal(t, runs[0].Checksum, runs[1].Checksum)

	stdout, err = execute(t, "history", "-c", cfg, "--prune", "1")
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(strings.TrimSpace(stdout), "\n")+1, "header plus one run:\n%s", stdout)
}

func TestHistory_Disabled(t *testing.T) {
	cfg := project(t, "", map[string]string{"schema/a.prisma": datasourceFragment})

	_, err := execute(t, "history", "-c", cfg)
	require.Error(t, err)
	require.Equal(t, engine.ErrCodeConfigurationUnreadable, engine.CodeOf(err))
}

func TestMetricsTextfile(t *testing.T) {
	cfg := project(t, `, "metrics": {"textfile": "metrics/aurora.prom"}`, map[string]string{
		"schema/a.prisma": datasourceFragment,
		"schema/b.prisma": userFragment,
	})

	_, err := execute(t, "build", "-c", cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfg), "metrics", "aurora.prom"))
	require.NoError(t, err)
	require.Contains(t, string(data), `aurora_runs_total{status="succeeded"} 1`)
	require.Contains(t, string(data), `aurora_declarations_total{kind="model",outcome="appended"} 1`)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "init", dir)
	require.NoError(t, err)

	path := filepath.Join(dir, config.DefaultFileName)
	cfg, err := config.NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "prisma/**/*.prisma")}, cfg.Files)
	require.Equal(t, filepath.Join(dir, "prisma/schema.prisma"), cfg.Output)
	require.DirExists(t, filepath.Join(dir, "prisma"))

	_, err = execute(t, "init", dir)
	require.Error(t, err, "init must not overwrite without --force")

	_, err = execute(t, "init", dir, "--force")
	require.NoError(t, err)
}
