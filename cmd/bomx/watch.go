package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/devanand13/bomx/internal/config"
	"github.com/devanand13/bomx/internal/watch"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and extract BOM data from arriving PDFs",
	Long: `Watches a directory (non-recursive) and runs the extraction pipeline
on each PDF once it has finished copying in. Configuration is
hot-reloaded on change; runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		a.cm.OnChange(func(cfg *config.Config) {
			if err := a.configure(cfg); err != nil {
				a.logger.Error("config reload failed, keeping previous settings", "error", err)
				return
			}
			a.logger.Info("configuration reloaded")
		})
		a.cm.WatchConfig()

		w := watch.New(args[0], flagDebounce, func(ctx context.Context, path string) {
			if err := a.processFile(ctx, path); err != nil {
				a.logger.Error("document failed", "path", path, "error", err)
			}
		}, a.logger)

		err = w.Run(cmd.Context())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", watch.DefaultDebounce,
		"quiet period before a new file is considered fully written")
}
