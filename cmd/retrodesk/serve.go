package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"retrodesk/pkg/api"
	"retrodesk/pkg/config"
	"retrodesk/pkg/content"
	"retrodesk/pkg/server"
	"retrodesk/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser desktop over HTTP",
	Long: `Serve the browser desktop, its JSON API and the websocket state feed.

Projects and posts are also served as plain pages under /projects/,
/blog/ and /about for crawlers and browsers without JavaScript.`,
	RunE: runServe,
}

func init() {
	addServeFlags(serveCmd.Flags())
	// retrodesk with no subcommand serves.
	addServeFlags(rootCmd.Flags())
}

func addServeFlags(f *pflag.FlagSet) {
	f.StringP("addr", "a", ":8080", "listen address")
	f.String("static-dir", "", "serve the browser desktop from this directory instead of the embedded one")
	f.String("tls-cert", "", "TLS certificate file")
	f.String("tls-key", "", "TLS key file")
	f.StringSlice("allow-origin", nil, "origin allowed for CORS and websockets (repeatable, * for any)")
}

func staticFS(cfg config.Config) (fs.FS, error) {
	if cfg.StaticDir == "" {
		return web.FS(), nil
	}
	if _, err := os.Stat(cfg.StaticDir); err != nil {
		return nil, fmt.Errorf("static dir: %w", err)
	}
	return os.DirFS(cfg.StaticDir), nil
}

func readyChecks(a *app) []server.Check {
	return []server.Check{
		{Name: "store", Fn: a.prefs.Check},
		{Name: "content", Fn: func(context.Context) error {
			if a.index.Len(content.TypeProject)+a.index.Len(content.TypePost) == 0 {
				return errors.New("no documents loaded")
			}
			return nil
		}},
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	static, err := staticFS(cfg)
	if err != nil {
		return err
	}
	httpAPI := api.New(api.Config{
		Desktop:        a.desktop,
		Logger:         logger.Named("http"),
		Static:         static,
		AllowedOrigins: cfg.AllowedOrigins,
		Checks:         readyChecks(a),
	})
	defer httpAPI.Close()

	var tlsCfg *server.TLSConfig
	if cfg.TLS.Enabled() {
		tlsCfg = &server.TLSConfig{CertFile: cfg.TLS.Cert, KeyFile: cfg.TLS.Key}
	}
	srv, err := server.New(server.Config{
		Addr:    cfg.Addr,
		Handler: httpAPI.Handler(),
		TLS:     tlsCfg,
		Logger:  logger.Named("server"),
	})
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	// The event loop outlives the server so requests still in flight
	// during shutdown get their replies.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.desktop.Run(loopCtx)
	})
	g.Go(func() error {
		defer stopLoop()
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return a.watch(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("bye")
	return nil
}
