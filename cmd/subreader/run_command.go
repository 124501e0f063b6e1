package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/subreader/subreader/internal/app"
	"github.com/subreader/subreader/internal/status"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Read subtitles aloud until interrupted",
		RunE:  nil,
	}
	applyOverrides := regionFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return err
		}
		applyOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		lock, err := acquireLock(cfg)
		if err != nil {
			return err
		}
		defer lock.Unlock()

		store := openHistory(cmd, cfg)
		if store != nil {
			defer store.Close()
		}

		a := app.New(cfg, status.NewHub(), store)
		if err := a.Start(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Reading region %dx%d at (%d,%d); press Ctrl-C to stop.\n",
			cfg.Capture.Region.Width, cfg.Capture.Region.Height,
			cfg.Capture.Region.X, cfg.Capture.Region.Y)

		sigCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		<-sigCtx.Done()

		a.Stop()
		fmt.Fprintln(cmd.OutOrStdout(), "Stopped.")
		return nil
	}

	return cmd
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Run one recognition cycle and print the result",
	}
	applyOverrides := regionFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return err
		}
		applyOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		a := app.New(cfg, status.NewHub(), nil)
		res, err := a.Preview()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Reason:     %s (%s)\n", res.Reason, res.Reason.Describe())
		if res.Text != "" {
			fmt.Fprintf(out, "Text:       %s\n", res.Text)
		}
		fmt.Fprintf(out, "Confidence: %.2f\n", res.Confidence)
		return nil
	}

	return cmd
}
