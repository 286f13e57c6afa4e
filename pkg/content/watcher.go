package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for a burst of changes to
// settle before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads an Index when its source directory changes.
type Watcher struct {
	dir      string
	index    *Index
	loader   *Loader
	logger   *zap.Logger
	debounce time.Duration
	onReload func(*Index)
}

// WatcherConfig holds configuration for a Watcher.
type WatcherConfig struct {
	Loader   *Loader
	Logger   *zap.Logger
	Debounce time.Duration
	// OnReload is called after each successful reload.
	OnReload func(*Index)
}

// NewWatcher creates a watcher that keeps index in sync with dir.
func NewWatcher(dir string, index *Index, cfg WatcherConfig) *Watcher {
	w := &Watcher{
		dir:      dir,
		index:    index,
		loader:   cfg.Loader,
		logger:   cfg.Logger,
		debounce: cfg.Debounce,
		onReload: cfg.OnReload,
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	if w.loader == nil {
		w.loader = NewLoader(WithLogger(w.logger))
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	return w
}

// Run watches until ctx is done. Reload failures are logged and the
// previous index stays in place.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range []string{w.dir, filepath.Join(w.dir, TypeProject.Dir()), filepath.Join(w.dir, TypePost.Dir())} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.logger.Info("watching content", zap.String("dir", w.dir))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("content changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))

			// A collection directory created after start needs its own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fsw.Add(event.Name); err != nil {
						w.logger.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	next, err := w.loader.Load(os.DirFS(w.dir))
	if err != nil {
		w.logger.Warn("content reload failed, keeping previous index", zap.Error(err))
		return
	}
	w.index.Replace(next)
	w.logger.Info("content reloaded",
		zap.Int("projects", w.index.Len(TypeProject)),
		zap.Int("posts", w.index.Len(TypePost)))
	if w.onReload != nil {
		w.onReload(w.index)
	}
}
