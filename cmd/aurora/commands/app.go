package commands

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sabinadams/aurora/pkg/config"
	"github.com/sabinadams/aurora/pkg/emitter"
	"github.com/sabinadams/aurora/pkg/engine"
	"github.com/sabinadams/aurora/pkg/policy"
	"github.com/sabinadams/aurora/pkg/stores"
	"github.com/sabinadams/aurora/pkg/telemetry"
)

// app holds the collaborators of a command built from the run
// configuration.
type app struct {
	cfg      *config.Config
	logger   *telemetry.Logger
	tracer   *telemetry.Tracer
	metrics  *telemetry.Metrics
	policies *policy.Engine
	history  *stores.SQLiteStore
	runner   *engine.Runner
}

// loadConfig loads the configuration named by --config, or the one found
// in the working directory.
func loadConfig(ctx context.Context) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.Resolve(".")
	}

	cfg, err := config.NewLoader().Load(ctx, path)
	if err != nil {
		return nil, engine.NewPermanentError(engine.ErrCodeConfigurationUnreadable, "failed to load configuration", err).
			WithPath(path)
	}
	return cfg, nil
}

// setup loads the configuration and wires the runner. The caller must
// close the app.
func setup(cmd *cobra.Command, version string) (*app, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	tcfg := telemetry.FromConfig(cfg, version)
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		tcfg.Logging.Level = level
	}
	if verbose {
		tcfg.Logging.Level = "debug"
	}

	if logFile != "" {
		tcfg.Logging.Output = logFile
		a.logger, err = telemetry.NewLogger(tcfg.Logging)
		if err != nil {
			return nil, engine.NewPermanentError(engine.ErrCodeConfigurationUnreadable, "failed to open log file", err).
				WithPath(logFile)
		}
	} else {
		a.logger = telemetry.NewWriterLogger(cmd.ErrOrStderr(), tcfg.Logging)
	}
	log.Logger = a.logger.Zerolog()

	if err := tcfg.Validate(); err != nil {
		a.close()
		return nil, engine.NewPermanentError(engine.ErrCodeConfigurationUnreadable, "invalid telemetry configuration", err).
			WithPath(cfg.Path)
	}

	a.tracer, err = telemetry.NewTracer(tcfg.Tracing, tcfg.ServiceName, tcfg.ServiceVersion,
		telemetry.WithTraceWriter(cmd.ErrOrStderr()))
	if err != nil {
		a.close()
		return nil, engine.NewPermanentError(engine.ErrCodeConfigurationUnreadable, "failed to initialise tracing", err).
			WithPath(cfg.Path)
	}

	a.metrics, err = telemetry.NewMetrics(tcfg.Metrics)
	if err != nil {
		a.close()
		return nil, err
	}

	a.policies, err = policy.NewEngine(a.logger.Zerolog())
	if err != nil {
		a.close()
		return nil, err
	}
	if len(cfg.Policies) > 0 {
		if err := a.policies.LoadPolicies(ctx, cfg.Policies); err != nil {
			a.close()
			return nil, engine.NewPermanentError(engine.ErrCodeConfigurationUnreadable, "failed to load policies", err).
				WithPath(cfg.Path)
		}
	}

	opts := []engine.RunnerOption{
		engine.WithPolicyEngine(a.policies),
		engine.WithMetrics(a.metrics),
		engine.WithTracer(a.tracer),
		engine.WithLogger(a.logger.Zerolog()),
	}

	if cfg.History.Enabled {
		a.history, err = stores.Open(ctx, stores.Config{Path: cfg.History.Path})
		if err != nil {
			a.close()
			return nil, engine.NewPermanentError(engine.ErrCodeConfigurationUnreadable, "failed to open run history", err).
				WithPath(cfg.History.Path)
		}
		opts = append(opts, engine.WithHistory(a.history))
	}

	em := emitter.New(a.logger.Zerolog(), cfg.Remote, emitter.WithStdout(cmd.OutOrStdout()))
	a.runner = engine.NewRunner(em, opts...)

	log.Debug().
		Str("config", cfg.Path).
		Strs("files", cfg.Files).
		Str("output", cfg.Output).
		Msg("Configuration loaded")

	return a, nil
}

// run executes one consolidation and exports its metrics.
func (a *app) run(ctx context.Context, opts engine.RunOptions) (*engine.RunReport, error) {
	report, err := a.runner.Run(ctx, a.cfg, opts)

	if a.cfg.Metrics.Textfile != "" {
		if err := os.MkdirAll(filepath.Dir(a.cfg.Metrics.Textfile), 0o755); err == nil {
			if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
				log.Warn().Err(err).Str("path", a.cfg.Metrics.Textfile).Msg("Failed to write metrics")
			}
		}
	}

	return report, err
}

// close releases the app. It is safe on a partially built app.
func (a *app) close() {
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.tracer.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to flush traces")
		}
		cancel()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close run history")
		}
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
}
