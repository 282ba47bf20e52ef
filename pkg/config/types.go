package config

import (
	"fmt"
	"strings"
	"time"
)

// DefaultFileName is the configuration file looked up when none is given.
const DefaultFileName = "aurora.config.json"

// Config is the run configuration of a consolidation.
type Config struct {
	// Files lists the glob patterns of the schema fragments, in order.
	Files []string `json:"files" validate:"required,min=1,dive,required"`

	// Output is the target of the consolidated schema: a path, "-" for
	// stdout, or an sftp://user@host[:port]/path URL.
	Output string `json:"output" validate:"required"`

	// StrictEnums turns enum value mismatches into conflicts.
	StrictEnums bool `json:"strictEnums"`

	// Policies lists additional Rego policy files or directories.
	Policies []string `json:"policies,omitempty"`

	// Lint evaluates schema policies during build.
	Lint bool `json:"lint"`

	History HistoryConfig `json:"history"`
	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
	Metrics MetricsConfig `json:"metrics"`
	Remote  RemoteConfig  `json:"remote"`

	// Path is the file the configuration was loaded from and Dir its
	// directory. Relative paths are resolved against Dir.
	Path string `json:"-"`
	Dir  string `json:"-"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path" validate:"required_if=Enabled true"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `json:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `json:"format" validate:"omitempty,oneof=console json"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `json:"enabled"`
	Exporter     string  `json:"exporter" validate:"omitempty,oneof=stdout otlp none"`
	Endpoint     string  `json:"endpoint"`
	Insecure     bool    `json:"insecure"`
	SamplingRate float64 `json:"samplingRate" validate:"gte=0,lte=1"`
}

// MetricsConfig configures Prometheus metrics output.
type MetricsConfig struct {
	// ListenAddress serves /metrics while watching, e.g. ":9464".
	ListenAddress string `json:"listenAddress" validate:"omitempty,hostname_port"`

	// Textfile writes metrics in text exposition format after each run.
	Textfile string `json:"textfile"`
}

// RemoteConfig configures sftp:// output targets.
type RemoteConfig struct {
	PrivateKeyPath        string `json:"privateKeyPath"`
	KnownHostsPath        string `json:"knownHostsPath"`
	StrictHostKeyChecking bool   `json:"strictHostKeyChecking"`
	Timeout               string `json:"timeout"`
}

// TimeoutDuration parses Timeout. An empty timeout defaults to 30 seconds.
func (r RemoteConfig) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid remote timeout %q: %w", r.Timeout, err)
	}
	return d, nil
}

// Default returns the configuration used for omitted settings.
func Default() *Config {
	return &Config{
		History: HistoryConfig{Path: ".aurora/history.db"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Tracing: TracingConfig{Exporter: "stdout", SamplingRate: 1.0},
		Remote:  RemoteConfig{StrictHostKeyChecking: true, Timeout: "30s"},
	}
}

// Starter returns the configuration written by `aurora init`.
func Starter() *Config {
	cfg := Default()
	cfg.Files = []string{"./prisma/**/*.prisma"}
	cfg.Output = "./prisma/schema.prisma"
	return cfg
}

// ValidationError represents a validation error with location information.
type ValidationError struct {
	// File is the source file path.
	File string `json:"file,omitempty"`

	// Line is the line number (1-indexed).
	Line int `json:"line,omitempty"`

	// Column is the column number (1-indexed).
	Column int `json:"column,omitempty"`

	// Path is the configuration path of the error (e.g., "tracing.exporter").
	Path string `json:"path,omitempty"`

	// Message is the error message.
	Message string `json:"message"`
}

// String formats the error as file:line:col: path: message.
func (v ValidationError) String() string {
	var b strings.Builder
	if v.File != "" {
		b.WriteString(v.File)
		if v.Line > 0 {
			fmt.Fprintf(&b, ":%d:%d", v.Line, v.Column)
		}
		b.WriteString(": ")
	}
	if v.Path != "" {
		b.WriteString(v.Path)
		b.WriteString(": ")
	}
	b.WriteString(v.Message)
	return b.String()
}

// Error reports a configuration that could not be read, decoded or validated.
type Error struct {
	Path   string            `json:"path"`
	Errors []ValidationError `json:"errors,omitempty"`
	Err    error             `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Errors) == 0 {
		if e.Err != nil {
			return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
		}
		return fmt.Sprintf("configuration %s is invalid", e.Path)
	}
	parts := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		parts[i] = v.String()
	}
	return fmt.Sprintf("configuration %s is invalid: %s", e.Path, strings.Join(parts, "; "))
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
