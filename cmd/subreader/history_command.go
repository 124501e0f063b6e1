package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/subreader/subreader/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage spoken subtitle history",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var session string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recently spoken lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(ctx.cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			var entries []history.Entry
			if session != "" {
				entries, err = store.BySession(cmd.Context(), session)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No spoken lines recorded.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.SpokenAt.Local().Format("2006-01-02 15:04:05"),
					fmt.Sprintf("%.2f", e.Confidence),
					e.Text,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Spoken At", "Conf", "Text"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum lines to show")
	cmd.Flags().StringVar(&session, "session", "", "Show one session in spoken order")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(ctx.cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", removed)
			return nil
		},
	}
}
