package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sabinadams/aurora/pkg/builder"
	"github.com/sabinadams/aurora/pkg/engine"
	"github.com/sabinadams/aurora/pkg/schema"
)

// Metrics provides Prometheus metrics for consolidation runs. It records
// run results for the engine and declaration outcomes for the builder.
type Metrics struct {
	config MetricsConfig

	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	lastRun      *prometheus.GaugeVec
	fragments    prometheus.Counter
	declarations *prometheus.CounterVec
	warnings     *prometheus.CounterVec
	violations   *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	_ engine.Metrics   = (*Metrics)(nil)
	_ builder.Observer = (*Metrics)(nil)
)

// NewMetrics creates a metrics collector. Disabled metrics record nothing.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DurationBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}

	m := &Metrics{
		config:   cfg,
		registry: prometheus.NewRegistry(),

		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of consolidation runs by status",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of consolidation runs in seconds",
				Buckets:   buckets,
			},
		),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Start time of the most recent run by status",
			},
			[]string{"status"},
		),
		fragments: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fragments_registered_total",
				Help:      "Total number of fragments registered with the builder",
			},
		),
		declarations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "declarations_total",
				Help:      "Total number of processed declarations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "warnings_total",
				Help:      "Total number of consolidation warnings by code",
			},
			[]string{"code"},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_violations_total",
				Help:      "Total number of policy violations by policy and severity",
			},
			[]string{"policy", "severity"},
		),
	}

	collectors := []prometheus.Collector{
		m.runs, m.runDuration, m.lastRun, m.fragments,
		m.declarations, m.warnings, m.violations,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return m, nil
}

// Enabled reports whether metrics are recorded.
func (m *Metrics) Enabled() bool {
	return m.registry != nil
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(report *engine.RunReport) {
	if m.registry == nil || report == nil {
		return
	}

	status := string(report.Status)
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Observe(report.Duration.Seconds())
	if !report.StartedAt.IsZero() {
		m.lastRun.WithLabelValues(status).Set(float64(report.StartedAt.UnixNano()) / float64(time.Second))
	}

	for _, w := range report.Warnings {
		m.warnings.WithLabelValues(string(w.Code)).Inc()
	}
	for _, v := range report.Violations {
		m.violations.WithLabelValues(v.Policy, v.Severity).Inc()
	}
}

// RecordFragment records a fragment registered with the builder.
func (m *Metrics) RecordFragment() {
	if m.registry == nil {
		return
	}
	m.fragments.Inc()
}

// DeclarationProcessed records the outcome of a registered declaration.
func (m *Metrics) DeclarationProcessed(kind schema.Kind, outcome builder.Outcome) {
	if m.registry == nil {
		return
	}
	m.declarations.WithLabelValues(string(kind), string(outcome)).Inc()
}

// Gatherer returns the registry of the collectors, or nil when disabled.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m.registry == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes the current metrics in the text exposition format,
// for the node exporter textfile collector. It is a no-op when metrics are
// disabled or path is empty.
func (m *Metrics) WriteTextfile(path string) error {
	if m.registry == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Listen opens the listener of the metrics endpoint. An empty address
// uses the configured listen address.
func (m *Metrics) Listen(addr string) (net.Listener, error) {
	if addr == "" {
		addr = m.config.ListenAddress
	}
	if addr == "" {
		return nil, fmt.Errorf("metrics listen address is required")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}

// Serve exposes the metrics on ln until ctx is done.
func (m *Metrics) Serve(ctx context.Context, ln net.Listener) error {
	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop metrics server: %w", err)
		}
		return nil
	}
}
