package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/subreader/subreader/internal/speech"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the synthesized audio cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show audio cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, bytes, err := speech.CacheStats(ctx.cfg.AudioCacheDir())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files: %d\n", count)
			fmt.Fprintf(out, "Size:  %s\n", humanBytes(bytes))
			fmt.Fprintf(out, "Dir:   %s\n", ctx.cfg.AudioCacheDir())
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached audio files",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := speech.ClearCache(ctx.cfg.AudioCacheDir())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached files.\n", removed)
			return nil
		},
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
