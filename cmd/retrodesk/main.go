// retrodesk serves a retro desktop portfolio: a window manager, a toy
// shell and a content index, reachable from a browser or a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"retrodesk/pkg/config"
)

var (
	// Global flags
	configFile string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "retrodesk",
	Short: "A retro desktop portfolio",
	Long: `retrodesk serves a Windows 95 style desktop for a portfolio of
projects and blog posts, with draggable windows, a taskbar and a DOS or
Unix flavored terminal.

Settings come from retrodesk.yaml, RETRODESK_* environment variables
and flags, in increasing order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		// The terminal desktop owns the screen, so it logs elsewhere.
		if cmd.Name() == "tui" {
			logger, err = newTUILogger(cfg)
		} else {
			logger, err = newLogger(cfg)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if cfg.File != "" {
			logger.Debug("config loaded", zap.String("file", cfg.File))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (default ./retrodesk.yaml)")
	pf.Bool("debug", false, "enable debug logging")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("content-dir", "", "directory holding projects/, blog/ and about.md (default: bundled samples)")
	pf.Bool("watch", false, "reload content when files change")
	pf.String("store", "file", "preference store: memory, file, sqlite or redis")
	pf.String("store-path", "", "file or database path for the file and sqlite stores")
	pf.String("redis-url", "", "redis URL for the redis store")
	pf.String("dialect", "dos", "terminal dialect: dos or unix")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(shCmd)
	rootCmd.AddCommand(indexCmd)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		zc.Development = false
	}
	if cfg.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// newTUILogger discards logs unless debugging, in which case they go to
// retrodesk-tui.log.
func newTUILogger(cfg config.Config) (*zap.Logger, error) {
	if !cfg.Debug {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	zc.OutputPaths = []string{"retrodesk-tui.log"}
	zc.ErrorOutputPaths = []string{"retrodesk-tui.log"}
	return zc.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
