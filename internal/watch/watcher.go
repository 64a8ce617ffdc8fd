// Package watch triggers debounced rebuilds when project sources change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docweb/internal/logfields"
)

// DefaultDebounce coalesces bursts of editor writes into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors directories and calls a rebuild function after changes
// settle.
type Watcher struct {
	dirs     []string
	ignore   []string
	skipExt  []string
	debounce time.Duration
	rebuild  func(ctx context.Context) error
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore skips events below any of dirs (typically the output directory).
func WithIgnore(dirs ...string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			if abs, err := filepath.Abs(d); err == nil {
				w.ignore = append(w.ignore, abs)
			}
		}
	}
}

// WithSkipExtensions skips files with any of exts (generated output that
// shares a directory with the sources).
func WithSkipExtensions(exts ...string) Option {
	return func(w *Watcher) { w.skipExt = append(w.skipExt, exts...) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a Watcher over dirs. Non-recursive: each directory must be
// listed explicitly.
func New(dirs []string, rebuild func(ctx context.Context) error, opts ...Option) *Watcher {
	w := &Watcher{dirs: dirs, debounce: DefaultDebounce, rebuild: rebuild, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done. Rebuild errors are logged and watching
// continues; only watcher setup failures are returned.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, d := range w.dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", d, err)
		}
		w.logger.Info("Watching for changes", logfields.Path(d))
	}

	// settle is nil while no rebuild is pending.
	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			settle = time.After(w.debounce)
		case <-settle:
			settle = nil
			w.logger.Info("Rebuilding after changes")
			if err := w.rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("Rebuild failed", logfields.Error(err))
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	// Editor swap and backup files.
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	for _, ext := range w.skipExt {
		if filepath.Ext(base) == ext {
			return false
		}
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return true
	}
	for _, dir := range w.ignore {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return false
		}
	}
	return true
}
