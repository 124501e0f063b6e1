package main

import (
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/subreader/subreader/internal/config"
	"github.com/subreader/subreader/internal/history"
)

// acquireLock guards against a second reader grabbing the screen and the
// speakers at the same time.
func acquireLock(cfg *config.Config) (*flock.Flock, error) {
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another instance is already running (lock at %s)", cfg.LockPath())
	}
	return lock, nil
}

func openHistory(cmd *cobra.Command, cfg *config.Config) *history.Store {
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "history disabled: %v\n", err)
		return nil
	}
	return store
}

// regionFlags registers capture override flags and returns an apply func
// that merges only the flags the user actually set.
func regionFlags(cmd *cobra.Command) func(cfg *config.Config) {
	var (
		x, y, width, height int
		interval            float64
	)

	cmd.Flags().IntVar(&x, "x", 0, "Capture region left edge")
	cmd.Flags().IntVar(&y, "y", 0, "Capture region top edge")
	cmd.Flags().IntVar(&width, "width", 0, "Capture region width")
	cmd.Flags().IntVar(&height, "height", 0, "Capture region height")
	cmd.Flags().Float64Var(&interval, "interval", 0, "Seconds between captures")

	return func(cfg *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("x") {
			cfg.Capture.Region.X = x
		}
		if flags.Changed("y") {
			cfg.Capture.Region.Y = y
		}
		if flags.Changed("width") {
			cfg.Capture.Region.Width = width
		}
		if flags.Changed("height") {
			cfg.Capture.Region.Height = height
		}
		if flags.Changed("interval") {
			cfg.Capture.IntervalSeconds = interval
		}
	}
}
