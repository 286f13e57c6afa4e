package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"retrodesk/pkg/config"
	"retrodesk/pkg/content"
	"retrodesk/pkg/desktop"
	"retrodesk/pkg/shell"
	"retrodesk/pkg/store"
)

// app is the desktop and what it was built from.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	index   *content.Index
	store   store.Store
	prefs   *store.Prefs
	desktop *desktop.Desktop
}

// contentFS returns the configured content directory or the bundled
// samples.
func contentFS(cfg config.Config) fs.FS {
	if cfg.ContentDir == "" {
		return content.SampleFS()
	}
	return os.DirFS(cfg.ContentDir)
}

func loadIndex(cfg config.Config, logger *zap.Logger) (*content.Index, error) {
	ix, err := content.Load(contentFS(cfg), content.WithLogger(logger.Named("content")))
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	return ix, nil
}

// newApp loads content, opens the preference store and builds the
// desktop. Call close when done.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	ix, err := loadIndex(cfg, logger)
	if err != nil {
		return nil, err
	}
	dialect, err := shell.ParseDialect(cfg.Shell.Dialect)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	prefs := store.NewPrefs(st, logger.Named("prefs"))

	d := desktop.New(desktop.Config{
		Index:    ix,
		Prefs:    prefs,
		Logger:   logger.Named("desktop"),
		Dialect:  dialect,
		Viewport: cfg.Viewport,
	})
	logger.Info("desktop ready",
		zap.Int("projects", ix.Len(content.TypeProject)),
		zap.Int("posts", ix.Len(content.TypePost)),
		zap.String("store", cfg.Store.Driver),
		zap.String("dialect", cfg.Shell.Dialect))

	return &app{cfg: cfg, logger: logger, index: ix, store: st, prefs: prefs, desktop: d}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", zap.Error(err))
	}
}

// watch reloads the index on changes in the content directory and tells
// the desktop. Without --watch or a content directory it returns at once.
func (a *app) watch(ctx context.Context) error {
	if !a.cfg.Watch {
		return nil
	}
	if a.cfg.ContentDir == "" {
		a.logger.Warn("--watch ignored: no content directory")
		return nil
	}
	w := content.NewWatcher(a.cfg.ContentDir, a.index, content.WatcherConfig{
		Loader: content.NewLoader(content.WithLogger(a.logger.Named("content"))),
		Logger: a.logger.Named("watch"),
		OnReload: func(*content.Index) {
			if _, err := a.desktop.Dispatch(desktop.Reload{}); err != nil {
				a.logger.Warn("reload event", zap.Error(err))
			}
		},
	})
	return w.Run(ctx)
}
