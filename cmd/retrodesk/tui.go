package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"retrodesk/pkg/tui"
)

var glamourStyle string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the desktop in the terminal",
	Long: `Run the desktop as a full screen terminal application.

Windows, the start menu and the terminal behave as in the browser and
share the same preference store. Press F1 for the start menu and ctrl+c
to quit.`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&glamourStyle, "style", "", "markdown style: dark, light, notty (default: detect)")
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.desktop.Run(gctx)
	})
	g.Go(func() error {
		return a.watch(gctx)
	})
	g.Go(func() error {
		// Quitting the program stops the clock and the watcher.
		defer cancel()
		return tui.Run(gctx, tui.Config{
			Desktop:      a.desktop,
			Logger:       logger.Named("tui"),
			GlamourStyle: glamourStyle,
		})
	})
	return g.Wait()
}
