// Package watch reruns a documentation build whenever one of its source
// files changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long to wait for a burst of events to settle.
const DefaultDebounce = 100 * time.Millisecond

// BuildFunc runs a build and returns the files it read. The returned set
// replaces the watched set, so files added by the build are picked up.
type BuildFunc func(ctx context.Context) ([]string, error)

// Options configures [Run].
type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger

	// OnEvent, when set, observes every relevant event before debouncing.
	OnEvent func(path string)
}

// Run calls build once, then again after each batch of changes to the files
// it returned, until ctx is done. Build errors are logged and do not stop
// the loop, so a broken edit can be fixed in place.
func Run(ctx context.Context, build BuildFunc, opts Options) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	files := map[string]struct{}{}
	dirs := map[string]struct{}{}

	rebuild := func() {
		paths, err := build(ctx)
		if err != nil {
			opts.Logger.Error("build failed", slog.Any("err", err))
		}
		if paths == nil {
			return
		}
		files = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			files[filepath.Clean(p)] = struct{}{}
			dir := filepath.Dir(p)
			if _, ok := dirs[dir]; ok {
				continue
			}
			// Watch the directory; atomic saves replace the file.
			if err := w.Add(dir); err != nil {
				opts.Logger.Warn("cannot watch directory", slog.String("dir", dir), slog.Any("err", err))
				continue
			}
			dirs[dir] = struct{}{}
		}
		opts.Logger.Info("watching for changes", slog.Int("files", len(files)), slog.Int("dirs", len(dirs)))
	}

	rebuild()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		changed []string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			path := filepath.Clean(event.Name)
			if _, ok := files[path]; !ok {
				continue
			}
			if opts.OnEvent != nil {
				opts.OnEvent(path)
			}
			if !slices.Contains(changed, path) {
				changed = append(changed, path)
			}
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
			} else {
				timer.Reset(opts.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			opts.Logger.Info("rebuilding", slog.Any("changed", changed))
			changed = changed[:0]
			rebuild()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Warn("watch error", slog.Any("err", err))
		}
	}
}
