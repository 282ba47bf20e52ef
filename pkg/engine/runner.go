package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/sabinadams/aurora/pkg/builder"
	"github.com/sabinadams/aurora/pkg/config"
	"github.com/sabinadams/aurora/pkg/schema"
	"github.com/sabinadams/aurora/pkg/source"
)

// Tracer starts spans. Both the OpenTelemetry tracers and telemetry.Tracer
// satisfy it.
type Tracer interface {
	Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSource replaces the fragment source. By default fragments are read
// with a source.Loader rooted at the configuration directory.
func WithSource(s FragmentSource) RunnerOption {
	return func(r *Runner) { r.source = s }
}

// WithPolicyEngine sets the engine used when linting is enabled.
func WithPolicyEngine(p PolicyEngine) RunnerOption {
	return func(r *Runner) { r.policy = p }
}

// WithHistory records every run in store.
func WithHistory(store HistoryStore) RunnerOption {
	return func(r *Runner) { r.history = store }
}

// WithMetrics records run metrics. If m also implements builder.Observer it
// observes every declaration.
func WithMetrics(m Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer sets the tracer for run spans.
func WithTracer(t Tracer) RunnerOption {
	return func(r *Runner) { r.tracer = t }
}

// WithLogger sets the run logger.
func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// Runner executes the consolidation pipeline: expand globs, load fragments,
// register them with a fresh builder, lint, then emit. A Runner holds no
// per-run state and may be reused, e.g. by watch mode.
type Runner struct {
	emitter Emitter
	source  FragmentSource
	policy  PolicyEngine
	history HistoryStore
	metrics Metrics
	tracer  Tracer
	logger  zerolog.Logger
	now     func() time.Time
}

// NewRunner creates a runner writing through emitter.
func NewRunner(emitter Emitter, opts ...RunnerOption) *Runner {
	r := &Runner{
		emitter: emitter,
		tracer:  noop.NewTracerProvider().Tracer("aurora"),
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("component", "engine").Logger()
	return r
}

// Run consolidates the fragments named by cfg. The report is returned even
// on failure. A run with no input files returns an informational error; a
// check run that finds drift is not an error and reports RunStatusDrift.
func (r *Runner) Run(ctx context.Context, cfg *config.Config, opts RunOptions) (report *RunReport, err error) {
	report = &RunReport{
		ID:        uuid.NewString(),
		Output:    cfg.Output,
		StartedAt: r.now(),
	}
	if opts.Output != "" {
		report.Output = overrideOutput(opts.Output)
	}

	ctx, span := r.tracer.Start(ctx, "aurora.run", trace.WithAttributes(
		attribute.String("run.id", report.ID),
		attribute.String("run.output", report.Output),
	))
	logger := r.logger.With().Str("run_id", report.ID).Logger()

	defer func() {
		report.Duration = r.now().Sub(report.StartedAt)
		switch {
		case err == nil:
			if report.Status == "" {
				report.Status = RunStatusSucceeded
			}
			span.SetStatus(codes.Ok, "")
		case IsInformational(err):
			report.Status = RunStatusNoInput
			span.SetStatus(codes.Ok, err.Error())
		default:
			report.Status = RunStatusFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("run.status", string(report.Status)))
		span.End()

		if r.metrics != nil {
			r.metrics.RecordRun(report)
		}
		r.record(ctx, cfg, report, err)

		logger.Debug().
			Str("status", string(report.Status)).
			Dur("duration", report.Duration).
			Msg("run finished")
	}()

	var exclude []string
	if !config.IsStdout(report.Output) && !config.IsRemote(report.Output) {
		exclude = append(exclude, report.Output)
	}
	files, err := source.Expand(cfg.Dir, cfg.Files, exclude...)
	if err != nil {
		return report, NewPermanentError(ErrCodeConfigurationUnreadable, "failed to expand input patterns", err).
			WithPath(cfg.Path)
	}
	report.Files = files
	if len(files) == 0 {
		return report, NewInformationalError(ErrCodeNoInputFragments, "no schema fragments matched the configured patterns").
			WithDetail("patterns", cfg.Files)
	}

	fragments, err := r.load(ctx, cfg, files)
	if err != nil {
		return report, err
	}

	result, err := r.consolidate(ctx, cfg, opts, fragments, report)
	if err != nil {
		return report, err
	}
	report.Source = result.Source
	report.Declarations = result.Document.Len()
	report.Warnings = result.Warnings
	for _, w := range result.Warnings {
		logger.Warn().Str("code", string(w.Code)).Msg(w.String())
	}

	if err := r.lint(ctx, cfg, opts, result.Document, report); err != nil {
		return report, err
	}

	if err := r.emit(ctx, opts, report); err != nil {
		return report, err
	}
	return report, nil
}

// overrideOutput resolves an output given on the command line. Relative
// paths are taken from the working directory, and the same absolute path is
// used both to exclude the output from the inputs and to write it.
func overrideOutput(output string) string {
	if config.IsStdout(output) || config.IsRemote(output) || filepath.IsAbs(output) {
		return output
	}
	if abs, err := filepath.Abs(output); err == nil {
		return abs
	}
	return output
}

func (r *Runner) load(ctx context.Context, cfg *config.Config, files []string) ([]schema.Fragment, error) {
	ctx, span := r.tracer.Start(ctx, "aurora.load", trace.WithAttributes(attribute.Int("files", len(files))))
	defer span.End()

	src := r.source
	if src == nil {
		src = source.NewLoader(r.logger, cfg.Dir)
	}

	fragments, err := src.Load(ctx, files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fragmentError(err)
	}
	return fragments, nil
}

func fragmentError(err error) *Error {
	e := NewPermanentError(ErrCodeFragmentInvalid, "failed to load schema fragment", err)

	var diags *schema.DiagnosticsError
	var readErr *source.ReadError
	switch {
	case errors.As(err, &diags):
		e.WithPath(diags.Origin)
	case errors.As(err, &readErr):
		e.WithPath(readErr.Path)
	}
	return e
}

func (r *Runner) consolidate(ctx context.Context, cfg *config.Config, opts RunOptions, fragments []schema.Fragment, report *RunReport) (*builder.Result, error) {
	strict := cfg.StrictEnums
	if opts.StrictEnums != nil {
		strict = *opts.StrictEnums
	}

	builderOpts := []builder.Option{
		builder.WithStrictEnums(strict),
		builder.WithLogger(r.logger),
	}
	if observer, ok := r.metrics.(builder.Observer); ok {
		builderOpts = append(builderOpts, builder.WithObserver(observer))
	}
	b := builder.New(builderOpts...)

	for _, fragment := range fragments {
		_, span := r.tracer.Start(ctx, "aurora.register", trace.WithAttributes(
			attribute.String("origin", fragment.Origin),
			attribute.Int("declarations", fragment.Document.Len()),
		))
		err := b.Register(fragment)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return nil, conflictError(err)
		}
		span.End()

		report.Fragments++
		if r.metrics != nil {
			r.metrics.RecordFragment()
		}
	}

	result, err := b.Finalize()
	if err != nil {
		return nil, NewPermanentError(ErrCodeFragmentInvalid, "failed to finalize schema", err)
	}
	return result, nil
}

func conflictError(err error) *Error {
	var conflict *builder.ConflictError
	if !errors.As(err, &conflict) {
		return NewPermanentError(ErrCodeFragmentInvalid, "failed to register fragment", err)
	}
	return NewConflictError(string(conflict.Code), "failed to consolidate fragments", err).
		WithPath(conflict.ConflictingOrigin).
		WithDetail("first_origin", conflict.FirstOrigin).
		WithDetail("declaration", fmt.Sprintf("%s %s", conflict.Kind, conflict.Name))
}

func (r *Runner) lint(ctx context.Context, cfg *config.Config, opts RunOptions, doc *schema.Document, report *RunReport) error {
	enabled := cfg.Lint
	if opts.Lint != nil {
		enabled = *opts.Lint
	}
	if !enabled || r.policy == nil {
		return nil
	}

	result, err := r.policy.Evaluate(ctx, doc)
	if err != nil {
		return NewPermanentError(ErrCodePolicyViolation, "failed to evaluate policies", err)
	}
	report.Violations = result.Violations

	blocking := 0
	for _, v := range result.Violations {
		event := r.logger.Info()
		if v.Blocking() {
			blocking++
			event = r.logger.Error()
		} else if v.Severity == "warning" {
			event = r.logger.Warn()
		}
		event.Str("policy", v.Policy).Str("declaration", v.Declaration).Msg(v.Message)
	}

	if !result.Allowed {
		return NewPermanentError(ErrCodePolicyViolation,
			fmt.Sprintf("schema violates %d blocking policy rule(s)", blocking), nil).
			WithDetail("violations", result.Violations)
	}
	return nil
}

func (r *Runner) emit(ctx context.Context, opts RunOptions, report *RunReport) error {
	if opts.DryRun {
		return nil
	}
	if r.emitter == nil {
		return NewPermanentError(ErrCodeOutputFailed, "no output emitter configured", nil)
	}

	ctx, span := r.tracer.Start(ctx, "aurora.emit", trace.WithAttributes(
		attribute.String("target", report.Output),
		attribute.Bool("check", opts.Check),
	))
	defer span.End()

	if opts.Check {
		upToDate, err := r.emitter.Check(ctx, report.Output, report.Source)
		if err != nil {
			span.RecordError(err)
			return NewPermanentError(ErrCodeOutputFailed, "failed to check output", err).WithPath(report.Output)
		}
		if !upToDate {
			report.Drift = true
			report.Status = RunStatusDrift
		}
		return nil
	}

	if err := r.emitter.Emit(ctx, report.Output, report.Source); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return NewPermanentError(ErrCodeOutputFailed, "failed to write output", err).WithPath(report.Output)
	}
	report.Written = true
	return nil
}

// record saves the run in the history store. Failures are logged and do not
// change the run outcome.
func (r *Runner) record(ctx context.Context, cfg *config.Config, report *RunReport, runErr error) {
	if r.history == nil {
		return
	}

	rec := &RunRecord{
		ID:           report.ID,
		Status:       report.Status,
		ConfigPath:   cfg.Path,
		Output:       report.Output,
		Fragments:    report.Fragments,
		Declarations: report.Declarations,
		Warnings:     len(report.Warnings),
		StartedAt:    report.StartedAt,
		Duration:     report.Duration,
	}
	if runErr != nil {
		rec.ErrorCode = CodeOf(runErr)
		rec.Error = runErr.Error()
	}
	if report.Source != nil {
		sum := sha256.Sum256(report.Source)
		rec.Checksum = hex.EncodeToString(sum[:])
	}

	// The run context may already be cancelled; the record is still kept.
	if err := r.history.RecordRun(context.WithoutCancel(ctx), rec); err != nil {
		r.logger.Warn().Err(err).Str("run_id", report.ID).Msg("failed to record run history")
	}
}
