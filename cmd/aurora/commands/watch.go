package commands

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sabinadams/aurora/pkg/config"
	"github.com/sabinadams/aurora/pkg/engine"
	"github.com/sabinadams/aurora/pkg/source"
)

func newWatchCommand(version string) *cobra.Command {
	var (
		metricsAddr string
		debounce    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the schema whenever a fragment changes",
		Long: `Build the schema, then watch the directories of the configured patterns
and rebuild after every burst of changes to .prisma files. Failed rebuilds
are logged and leave the previous output in place.

Policies are reloaded before every rebuild, so edits to custom Rego files
take effect on the next change.`,
		Example: `  # Watch the current project
  aurora watch

  # Expose Prometheus metrics while watching
  aurora watch --metrics-addr :9464`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, version)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()

			var wg sync.WaitGroup
			defer wg.Wait()

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			if metricsAddr == "" {
				metricsAddr = a.cfg.Metrics.ListenAddress
			}
			if metricsAddr != "" {
				ln, err := a.metrics.Listen(metricsAddr)
				if err != nil {
					return err
				}
				log.Info().Str("address", ln.Addr().String()).Msg("Serving metrics")

				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := a.metrics.Serve(ctx, ln); err != nil {
						log.Error().Err(err).Msg("Metrics server failed")
					}
				}()
			}

			rebuild := func(ctx context.Context) {
				if err := a.policies.ReloadPolicies(ctx); err != nil {
					log.Warn().Err(err).Msg("Failed to reload policies, keeping the previous set")
				}
				report, err := a.run(ctx, engine.RunOptions{})
				if err != nil {
					logRunError(err)
					return
				}
				_ = printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), report, nil)
			}

			rebuild(ctx)

			var ignore []string
			if !config.IsStdout(a.cfg.Output) && !config.IsRemote(a.cfg.Output) {
				ignore = append(ignore, a.cfg.Output)
			}
			roots := source.Roots(a.cfg.Dir, a.cfg.Files)
			log.Info().Strs("roots", roots).Msg("Watching for changes")

			watcher := source.NewWatcher(a.logger.Zerolog(), debounce, ignore...)
			if err := watcher.Watch(ctx, roots, rebuild); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().DurationVar(&debounce, "debounce", source.DefaultDebounce, "wait for changes to settle before rebuilding")

	return cmd
}

// logRunError logs a failed rebuild without stopping the watch.
func logRunError(err error) {
	var runErr *engine.Error
	if !errors.As(err, &runErr) {
		log.Error().Err(err).Msg("Rebuild failed")
		return
	}

	event := log.Error()
	if runErr.Class == engine.ErrorClassInformational {
		event = log.Warn()
	}
	event = event.Str("code", runErr.Code)
	if runErr.Path != "" {
		event = event.Str("path", runErr.Path)
	}
	event.Msg(err.Error())
}
