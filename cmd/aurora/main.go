package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sabinadams/aurora/cmd/aurora/commands"
	"github.com/sabinadams/aurora/pkg/engine"
	"github.com/sabinadams/aurora/pkg/telemetry"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitDrift  = 2
)

func main() {
	setupLogging()

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Received interrupt signal, shutting down...")
		cancel()
	}()

	err := commands.Execute(ctx, Version, Commit, BuildDate)
	cancel()
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process exit code and reports it.
func exitCode(err error) int {
	var runErr *engine.Error
	switch {
	case err == nil:
		return exitOK

	case errors.Is(err, commands.ErrDrift):
		log.Warn().Msg(err.Error())
		return exitDrift

	case engine.IsInformational(err):
		log.Info().Str("code", engine.CodeOf(err)).Msg(err.Error())
		return exitOK

	case errors.As(err, &runErr):
		event := log.Error().Str("code", runErr.Code)
		if runErr.Path != "" {
			event = event.Str("path", runErr.Path)
		}
		event.Msg(err.Error())
		return exitFailed

	default:
		log.Error().Msg(err.Error())
		return exitFailed
	}
}

// setupLogging configures zerolog for the messages logged before a
// configuration is loaded. Commands replace it with the configured logger.
func setupLogging() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	log.Logger = logger.Level(telemetry.ParseLevel(os.Getenv("LOG_LEVEL")))
}
