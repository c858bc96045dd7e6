package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/grovetools/extender/cli"
	"github.com/grovetools/extender/logging"
	"github.com/grovetools/extender/pkg/watcher"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload profiles whenever a configuration file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBroker(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = logging.WithWriter(ctx, cmd.OutOrStdout())
			pretty := logging.NewPrettyLogger(ctx)

			if b.cfg.Watch != nil && b.cfg.Watch.Enabled != nil && !*b.cfg.Watch.Enabled {
				pretty.Warn("Watching is disabled in the configuration (watch.enabled: false)")
				return nil
			}

			if err := b.reload(ctx, ""); err != nil {
				return err
			}

			w, err := newConfigWatcher(b, pretty)
			if err != nil {
				return err
			}

			for _, src := range b.cfg.Sources() {
				pretty.Info(fmt.Sprintf("Watching %s", src))
			}
			cli.GetLogger(cmd).Debug("Config watcher started")

			if err := w.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
}

// newConfigWatcher watches every file the configuration was merged from.
func newConfigWatcher(b *broker, pretty *logging.PrettyLogger) (*watcher.Watcher, error) {
	debounce := watcher.DefaultDebounce
	if b.cfg.Watch != nil && b.cfg.Watch.DebounceMs > 0 {
		debounce = time.Duration(b.cfg.Watch.DebounceMs) * time.Millisecond
	}

	return watcher.New(b.ext, b.cfg.Sources(),
		watcher.WithDebounce(debounce),
		watcher.WithOnReload(func(file string, err error) {
			if pretty == nil {
				return
			}
			if err != nil {
				pretty.Error(fmt.Sprintf("Reload after change to %s failed", filepath.Base(file)), err)
				return
			}
			pretty.Success(fmt.Sprintf("Reloaded after change to %s", filepath.Base(file)))
			if pending := b.ext.PendingReloads(); pending > 0 {
				pretty.Info(fmt.Sprintf("%d more reload(s) queued", pending))
			}
		}),
	)
}
