package telemetry

import (
	"fmt"

	"github.com/sabinadams/aurora/pkg/config"
)

// Config contains the telemetry configuration of a process.
type Config struct {
	// ServiceName identifies the process in traces.
	ServiceName string

	// ServiceVersion is the build version.
	ServiceVersion string

	Logging LoggingConfig
	Tracing TracingConfig
	Metrics MetricsConfig
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format is console or json.
	Format string

	// Output is stdout, stderr or a file path. Logs go to stderr by
	// default so the schema can be written to stdout.
	Output string

	// EnableCaller adds file:line caller information.
	EnableCaller bool

	// TimeFormat is unix, unixms or rfc3339.
	TimeFormat string
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled bool

	// Exporter is otlp, stdout or none.
	Exporter string

	// Endpoint is the OTLP gRPC collector address.
	Endpoint string

	// SamplingRate is the ratio of sampled root spans (0.0 to 1.0).
	SamplingRate float64

	// Insecure disables TLS for the OTLP connection.
	Insecure bool
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled registers the collectors. Disabled metrics record nothing.
	Enabled bool

	// ListenAddress serves Path over HTTP when set.
	ListenAddress string

	// Path is the HTTP path of the exposition endpoint.
	Path string

	// Textfile receives the text exposition after each run when set.
	Textfile string

	// Namespace prefixes every metric name.
	Namespace string

	// DurationBuckets are the run duration buckets in seconds.
	DurationBuckets []float64
}

// DefaultConfig returns the telemetry configuration used when nothing is
// configured: console logs on stderr, no tracing, metrics collected but
// not exported.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "aurora",
		ServiceVersion: "dev",
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stderr",
			TimeFormat: "rfc3339",
		},
		Tracing: TracingConfig{
			Exporter:     "none",
			SamplingRate: 1.0,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "aurora",
			DurationBuckets: []float64{
				0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0,
			},
		},
	}
}

// FromConfig derives the telemetry configuration of a run configuration.
func FromConfig(cfg *config.Config, version string) *Config {
	out := DefaultConfig()
	if version != "" {
		out.ServiceVersion = version
	}
	if cfg == nil {
		return out
	}

	if cfg.Logging.Level != "" {
		out.Logging.Level = cfg.Logging.Level
	}
	if cfg.Logging.Format != "" {
		out.Logging.Format = cfg.Logging.Format
	}

	out.Tracing.Enabled = cfg.Tracing.Enabled
	if cfg.Tracing.Exporter != "" {
		out.Tracing.Exporter = cfg.Tracing.Exporter
	}
	out.Tracing.Endpoint = cfg.Tracing.Endpoint
	out.Tracing.Insecure = cfg.Tracing.Insecure
	out.Tracing.SamplingRate = cfg.Tracing.SamplingRate

	out.Metrics.ListenAddress = cfg.Metrics.ListenAddress
	out.Metrics.Textfile = cfg.Metrics.Textfile
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}

	if c.ServiceVersion == "" {
		return fmt.Errorf("service version is required")
	}

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'console' or 'json')", c.Logging.Format)
	}

	validExporters := map[string]bool{
		"otlp": true, "stdout": true, "none": true,
	}
	if c.Tracing.Enabled && !validExporters[c.Tracing.Exporter] {
		return fmt.Errorf("invalid trace exporter: %s", c.Tracing.Exporter)
	}

	if c.Tracing.Enabled && c.Tracing.Exporter == "otlp" && c.Tracing.Endpoint == "" {
		return fmt.Errorf("otlp exporter requires an endpoint")
	}

	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0 and 1, got: %f", c.Tracing.SamplingRate)
	}

	return nil
}
