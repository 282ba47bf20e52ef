package config

import (
	"context"
	"testing"
	"time"
)

func TestStarlarkEvaluator_Evaluate(t *testing.T) {
	evaluator := NewStarlarkEvaluator(5 * time.Second)
	ctx := context.Background()

	tests := []struct {
		name      string
		script    string
		input     map[string]interface{}
		checkFunc func(*testing.T, *StarlarkResult)
		wantErr   bool
	}{
		{
			name: "plain globals",
			script: `
files = ["prisma/*.prisma"]
output = "schema.prisma"
strictEnums = True
`,
			checkFunc: func(t *testing.T, sr *StarlarkResult) {
				files, ok := sr.Output["files"].([]interface{})
				if !ok || len(files) != 1 || files[0] != "prisma/*.prisma" {
					t.Errorf("unexpected files: %v", sr.Output["files"])
				}
				if sr.Output["strictEnums"] != true {
					t.Errorf("expected strictEnums=true, got %v", sr.Output["strictEnums"])
				}
			},
		},
		{
			name: "generated file list",
			script: `
_domains = ["users", "billing", "audit"]

def _glob(domain):
    return "domains/" + domain + "/*.prisma"

files = [_glob(d) for d in _domains]
output = "-"
`,
			checkFunc: func(t *testing.T, sr *StarlarkResult) {
				files, ok := sr.Output["files"].([]interface{})
				if !ok {
					t.Fatalf("expected files to be a list, got %T", sr.Output["files"])
				}
				if len(files) != 3 || files[2] != "domains/audit/*.prisma" {
					t.Errorf("unexpected files: %v", files)
				}
				if _, ok := sr.Output["_domains"]; ok {
					t.Error("private globals must not be exported")
				}
				if _, ok := sr.Output["_glob"]; ok {
					t.Error("functions must not be exported")
				}
			},
		},
		{
			name: "nested dict and struct",
			script: `
tracing = {"enabled": True, "samplingRate": 0.25}
remote = struct(timeout = "5s", strictHostKeyChecking = False)
`,
			checkFunc: func(t *testing.T, sr *StarlarkResult) {
				tracing, ok := sr.Output["tracing"].(map[string]interface{})
				if !ok {
					t.Fatalf("expected tracing to be a dict, got %T", sr.Output["tracing"])
				}
				if tracing["samplingRate"] != 0.25 {
					t.Errorf("expected samplingRate=0.25, got %v", tracing["samplingRate"])
				}
				remote, ok := sr.Output["remote"].(map[string]interface{})
				if !ok {
					t.Fatalf("expected remote to be a dict, got %T", sr.Output["remote"])
				}
				if remote["timeout"] != "5s" || remote["strictHostKeyChecking"] != false {
					t.Errorf("unexpected remote: %v", remote)
				}
			},
		},
		{
			name: "input variables",
			script: `
doubled = count * 2
`,
			input: map[string]interface{}{
				"count": 5,
			},
			checkFunc: func(t *testing.T, sr *StarlarkResult) {
				if sr.Output["doubled"] != int64(10) {
					t.Errorf("expected doubled=10, got %v", sr.Output["doubled"])
				}
			},
		},
		{
			name: "tuple becomes list",
			script: `
files = ("a.prisma", "b.prisma")
`,
			checkFunc: func(t *testing.T, sr *StarlarkResult) {
				files, ok := sr.Output["files"].([]interface{})
				if !ok || len(files) != 2 {
					t.Errorf("unexpected files: %v", sr.Output["files"])
				}
			},
		},
		{
			name: "syntax error",
			script: `
invalid syntax here
`,
			wantErr: true,
		},
		{
			name: "runtime error",
			script: `
output = undefined_variable
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := evaluator.Evaluate(ctx, "aurora.config.star", tt.script, tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got none")
				}
				if result == nil || result.Error == "" {
					t.Errorf("expected error in result")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.checkFunc != nil {
				tt.checkFunc(t, result)
			}
			if result.ExecutionTime == 0 {
				t.Error("expected non-zero execution time")
			}
		})
	}
}

func TestStarlarkEvaluator_Env(t *testing.T) {
	evaluator := NewStarlarkEvaluator(5 * time.Second)
	evaluator.getenv = func(name string) (string, bool) {
		if name == "AURORA_OUTPUT" {
			return "build/schema.prisma", true
		}
		return "", false
	}

	script := `
output = env("AURORA_OUTPUT")
level = env("AURORA_LOG_LEVEL", "warn")
missing = env("AURORA_MISSING")
`

	result, err := evaluator.Evaluate(context.Background(), "env.star", script, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Output["output"] != "build/schema.prisma" {
		t.Errorf("expected output from environment, got %v", result.Output["output"])
	}
	if result.Output["level"] != "warn" {
		t.Errorf("expected default level, got %v", result.Output["level"])
	}
	if result.Output["missing"] != "" {
		t.Errorf("expected empty string for unset variable, got %v", result.Output["missing"])
	}
}

func TestStarlarkEvaluator_Timeout(t *testing.T) {
	evaluator := NewStarlarkEvaluator(100 * time.Millisecond)

	script := `
def slow_function():
    result = 0
    for i in range(100000000):
        result = result + i
    return result

output = slow_function()
`

	result, err := evaluator.Evaluate(context.Background(), "slow.star", script, nil)
	if err == nil {
		t.Error("expected timeout error")
	}

	if result != nil && result.Error == "" {
		t.Error("expected timeout error in result")
	}
}

func TestStarlarkEvaluator_PrintSuppressed(t *testing.T) {
	evaluator := NewStarlarkEvaluator(5 * time.Second)

	script := `
print("this should not appear")
output = "done"
`

	result, err := evaluator.Evaluate(context.Background(), "print.star", script, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Output["output"] != "done" {
		t.Errorf("expected output='done', got %v", result.Output["output"])
	}
}
