// Package emitter writes the consolidated schema to its output target.
//
// A target is either standard output ("" or "-"), an sftp:// URL, or a local
// path. Local files are replaced atomically: the content is written to a
// temporary file in the target directory which is then renamed over the
// target, so a failed run never leaves a partial schema behind.
package emitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/sabinadams/aurora/pkg/config"
	"github.com/sabinadams/aurora/pkg/transports/ssh"
)

// ErrCheckStdout is returned by Check for a standard output target.
var ErrCheckStdout = errors.New("check mode needs a file or sftp:// output target")

const fileMode os.FileMode = 0o644

// RemoteFS is the part of an SSH connection the emitter uses.
type RemoteFS interface {
	WriteFile(ctx context.Context, remotePath string, content []byte, mode os.FileMode) error
	ReadFile(ctx context.Context, remotePath string) ([]byte, error)
	Close() error
}

// Dialer opens a remote connection.
type Dialer func(ctx context.Context, cfg *ssh.Config) (RemoteFS, error)

// Option configures an Emitter.
type Option func(*Emitter)

// WithStdout sets the writer used for the standard output target.
func WithStdout(w io.Writer) Option {
	return func(e *Emitter) { e.stdout = w }
}

// WithDialer replaces the SSH dialer used for sftp:// targets.
func WithDialer(d Dialer) Option {
	return func(e *Emitter) { e.dial = d }
}

// Emitter writes rendered schemas.
type Emitter struct {
	stdout io.Writer
	remote config.RemoteConfig
	dial   Dialer
	logger zerolog.Logger
}

// New creates an emitter. remote holds the credentials for sftp:// targets.
func New(logger zerolog.Logger, remote config.RemoteConfig, opts ...Option) *Emitter {
	e := &Emitter{
		stdout: os.Stdout,
		remote: remote,
		dial: func(ctx context.Context, cfg *ssh.Config) (RemoteFS, error) {
			client, err := ssh.Dial(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		logger: logger.With().Str("component", "emitter").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit writes content to target.
func (e *Emitter) Emit(ctx context.Context, target string, content []byte) error {
	switch {
	case config.IsStdout(target):
		if _, err := e.stdout.Write(content); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil

	case config.IsRemote(target):
		return e.emitRemote(ctx, target, content)

	default:
		if err := WriteFileAtomic(target, content); err != nil {
			return err
		}
		e.logger.Debug().
			Str("target", target).
			Int("bytes", len(content)).
			Msg("Schema written")
		return nil
	}
}

// Check reports whether target already holds exactly content. A missing
// target is reported as not up to date.
func (e *Emitter) Check(ctx context.Context, target string, content []byte) (bool, error) {
	switch {
	case config.IsStdout(target):
		return false, ErrCheckStdout

	case config.IsRemote(target):
		client, remotePath, err := e.connect(ctx, target)
		if err != nil {
			return false, err
		}
		defer client.Close()

		current, err := client.ReadFile(ctx, remotePath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, fmt.Errorf("failed to read %s: %w", target, err)
		}
		return bytes.Equal(current, content), nil

	default:
		current, err := os.ReadFile(target)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, fmt.Errorf("failed to read %s: %w", target, err)
		}
		return bytes.Equal(current, content), nil
	}
}

func (e *Emitter) emitRemote(ctx context.Context, target string, content []byte) error {
	client, remotePath, err := e.connect(ctx, target)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.WriteFile(ctx, remotePath, content, fileMode); err != nil {
		return fmt.Errorf("failed to upload %s: %w", target, err)
	}

	e.logger.Debug().
		Str("target", target).
		Int("bytes", len(content)).
		Msg("Schema uploaded")
	return nil
}

func (e *Emitter) connect(ctx context.Context, target string) (RemoteFS, string, error) {
	t, err := ssh.ParseTarget(target)
	if err != nil {
		return nil, "", err
	}
	timeout, err := e.remote.TimeoutDuration()
	if err != nil {
		return nil, "", err
	}

	cfg := t.Config(e.remote.PrivateKeyPath, e.remote.KnownHostsPath, e.remote.StrictHostKeyChecking, timeout)
	client, err := e.dial(ctx, cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to connect to %s: %w", cfg.Address(), err)
	}
	return client, t.Path, nil
}

// WriteFileAtomic replaces path with content. Parent directories are
// created; an existing file keeps its permissions.
func WriteFileAtomic(path string, content []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	mode := fileMode
	if info, statErr := os.Stat(path); statErr == nil {
		if info.IsDir() {
			return fmt.Errorf("output %s is a directory", path)
		}
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace output: %w", err)
	}
	return nil
}
