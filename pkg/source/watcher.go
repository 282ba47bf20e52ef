package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for further changes before
// triggering a rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches fragment directories and calls a rebuild function after
// a burst of changes to .prisma files settles.
type Watcher struct {
	logger   zerolog.Logger
	debounce time.Duration
	ignore   map[string]struct{}
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher. Changes to the ignored paths, typically the
// output file, never trigger a rebuild.
func NewWatcher(logger zerolog.Logger, debounce time.Duration, ignore ...string) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		logger:   logger.With().Str("component", "watcher").Logger(),
		debounce: debounce,
		ignore:   make(map[string]struct{}, len(ignore)),
	}
	for _, p := range ignore {
		if abs, err := filepath.Abs(p); err == nil {
			w.ignore[abs] = struct{}{}
		}
	}
	return w
}

// Watch watches roots recursively and blocks until ctx is done. Rebuilds run
// on the watching goroutine, so they never overlap.
func (w *Watcher) Watch(ctx context.Context, roots []string, rebuild func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = watcher
	defer func() { _ = watcher.Close() }()

	watched := 0
	for _, root := range roots {
		if err := w.watchDirectory(root); err != nil {
			w.logger.Warn().Err(err).Str("path", root).Msg("Failed to watch directory")
			continue
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("none of the %d fragment directories could be watched", len(roots))
	}

	w.logger.Info().
		Int("paths", watched).
		Dur("debounce", w.debounce).
		Msg("Started watching fragment directories")

	// Debounce rebuilds; fire holds at most one pending rebuild.
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}

			w.logger.Debug().
				Str("file", event.Name).
				Str("op", event.Op.String()).
				Msg("Fragment changed")

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			rebuild(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

// handle reports whether event should schedule a rebuild. New directories
// are added to the watch list.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchDirectory(event.Name); err != nil {
				w.logger.Warn().Err(err).Str("path", event.Name).Msg("Failed to watch new directory")
			}
			return true
		}
	}
	return w.relevant(event)
}

// relevant reports whether event touches a fragment file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if !strings.HasSuffix(event.Name, ".prisma") {
		return false
	}
	if abs, err := filepath.Abs(event.Name); err == nil {
		if _, ignored := w.ignore[abs]; ignored {
			return false
		}
	}
	return true
}

// watchDirectory adds dirPath and all directories below it to the watcher.
func (w *Watcher) watchDirectory(dirPath string) error {
	return filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return w.watcher.Add(path)
		}

		return nil
	})
}
