package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/subreader/subreader/internal/app"
	"github.com/subreader/subreader/internal/server"
	"github.com/subreader/subreader/internal/status"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the reader over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
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

			hub := status.NewHub()
			a := app.New(cfg, hub, store)

			if cfg.AutoStart {
				if err := a.Start(); err != nil {
					return err
				}
			}

			srv := &http.Server{
				Addr:              cfg.Server.Bind,
				Handler:           server.New(a, hub).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", cfg.Server.Bind)
				errCh <- srv.ListenAndServe()
			}()

			sigCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			select {
			case err := <-errCh:
				a.Stop()
				return err
			case <-sigCtx.Done():
			}

			a.Stop()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Address to listen on (overrides config)")
	return cmd
}
