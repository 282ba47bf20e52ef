// Package telemetry provides the logging, tracing and metrics of aurora.
//
// Logging wraps zerolog. Logs are written to stderr by default so that a
// schema emitted to stdout stays clean:
//
//	logger, err := telemetry.NewLogger(cfg.Logging)
//	runner := engine.NewRunner(em, engine.WithLogger(logger.Zerolog()))
//
// Tracing uses OpenTelemetry with stdout, OTLP gRPC or no exporter. The
// engine opens the spans aurora.run, aurora.load, aurora.register and
// aurora.emit through any tracer with a Start method, including Tracer.
//
// Metrics are Prometheus collectors on a private registry. Metrics
// implements engine.Metrics and builder.Observer, so a single value passed
// to engine.WithMetrics records both run results and per-declaration
// outcomes:
//
//	aurora_runs_total{status}
//	aurora_run_duration_seconds
//	aurora_last_run_timestamp_seconds{status}
//	aurora_fragments_registered_total
//	aurora_declarations_total{kind,outcome}
//	aurora_warnings_total{code}
//	aurora_policy_violations_total{policy,severity}
//
// They are served over HTTP while watching (Listen and Serve) or written
// to a textfile after each run (WriteTextfile).
package telemetry
