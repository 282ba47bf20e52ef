package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sabinadams/aurora/pkg/config"
)

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"
	cfg.Tracing = config.TracingConfig{Enabled: true, Exporter: "otlp", Endpoint: "collector:4317", Insecure: true, SamplingRate: 0.5}
	cfg.Metrics = config.MetricsConfig{ListenAddress: ":9464", Textfile: "/var/lib/node/aurora.prom"}

	got := FromConfig(cfg, "v1.2.3")

	if got.ServiceName != "aurora" || got.ServiceVersion != "v1.2.3" {
		t.Errorf("unexpected service: %s %s", got.ServiceName, got.ServiceVersion)
	}
	if got.Logging.Level != "debug" || got.Logging.Format != "json" || got.Logging.Output != "stderr" {
		t.Errorf("unexpected logging: %+v", got.Logging)
	}
	if !got.Tracing.Enabled || got.Tracing.Exporter != "otlp" || got.Tracing.Endpoint != "collector:4317" || got.Tracing.SamplingRate != 0.5 {
		t.Errorf("unexpected tracing: %+v", got.Tracing)
	}
	if got.Metrics.ListenAddress != ":9464" || got.Metrics.Textfile != "/var/lib/node/aurora.prom" || !got.Metrics.Enabled {
		t.Errorf("unexpected metrics: %+v", got.Metrics)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	if def := FromConfig(nil, ""); def.ServiceVersion != "dev" || def.Tracing.Enabled {
		t.Errorf("unexpected defaults: %+v", def)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "default", modify: func(*Config) {}},
		{name: "no service", modify: func(c *Config) { c.ServiceName = "" }, wantErr: "service name"},
		{name: "bad level", modify: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "log level"},
		{name: "bad format", modify: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "log format"},
		{
			name:    "bad exporter",
			modify:  func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Exporter = "jaeger" },
			wantErr: "trace exporter",
		},
		{
			name:    "otlp without endpoint",
			modify:  func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Exporter = "otlp" },
			wantErr: "endpoint",
		},
		{name: "bad sampling", modify: func(c *Config) { c.Tracing.SamplingRate = 2 }, wantErr: "sampling rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LoggingConfig{Level: "info", Format: "json"})

	logger.NewComponentLogger("engine").WithRunID("run-1").WithOrigin("schema/a.prisma").Info("Fragment registered")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json log: %v", err)
	}
	want := map[string]string{
		"level":     "info",
		"component": "engine",
		"run_id":    "run-1",
		"origin":    "schema/a.prisma",
		"message":   "Fragment registered",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %s", k, entry[k], v)
		}
	}
}

func TestLogger_Context(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LoggingConfig{Level: "debug", Format: "json"})

	ctx := logger.WithContext(context.Background())
	if FromContext(ctx) != logger {
		t.Error("expected the stored logger")
	}
	if FromContext(context.Background()) == nil {
		t.Error("expected a fallback logger")
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"trace", "debug", "info", "warn", "error"} {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("ParseLevel(%q) = %s", name, got)
		}
	}
	if got := ParseLevel("verbose").String(); got != "info" {
		t.Errorf("unknown levels must map to info, got %s", got)
	}
}

func TestTracer_Disabled(t *testing.T) {
	tracer, err := NewTracer(TracingConfig{}, "aurora", "dev")
	if err != nil {
		t.Fatalf("NewTracer() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("expected a no-op tracer")
	}

	ctx, span := tracer.Start(context.Background(), "aurora.run")
	span.End()
	if TraceID(ctx) != "" {
		t.Error("no-op spans must not carry a trace ID")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestTracer_Stdout(t *testing.T) {
	var buf bytes.Buffer
	tracer, err := NewTracer(
		TracingConfig{Enabled: true, Exporter: "stdout", SamplingRate: 1},
		"aurora", "dev",
		WithTraceWriter(&buf),
	)
	if err != nil {
		t.Fatalf("NewTracer() error = %v", err)
	}

	ctx, span := tracer.Start(context.Background(), "aurora.emit")
	if TraceID(ctx) == "" {
		t.Error("expected a trace ID on a sampled span")
	}
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"Name": "aurora.emit"`) {
		t.Errorf("exported spans miss aurora.emit:\n%s", buf.String())
	}
}

func TestTracer_UnsupportedExporter(t *testing.T) {
	_, err := NewTracer(TracingConfig{Enabled: true, Exporter: "zipkin"}, "aurora", "dev")
	if err == nil {
		t.Fatal("expected an error")
	}
}
