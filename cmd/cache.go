package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/forksync/cli"
	"github.com/grovetools/forksync/internal/cache"
	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/tui/components/table"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the fork cache",
	}
	cmd.AddCommand(newCacheInfoCmd(), newCacheClearCmd())
	return cmd
}

func openCache(cmd *cobra.Command) (*cache.Store, cli.CommandOptions, error) {
	opts := cli.GetOptions(cmd)
	if opts.Verbose {
		// Only the level matters here; the config file is not needed.
		if _, err := cli.LoadConfig(opts); err != nil {
			return nil, opts, err
		}
	}
	store, err := cache.Open(cachePath())
	return store, opts, err
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cache location, size and last full sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, opts, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			info, err := store.Info()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				return writeJSON(out, info)
			}

			last := "never"
			if info.LastFullSync != nil {
				last = info.LastFullSync.Local().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintln(out, table.KeyValueTable([][2]string{
				{"Path", info.Path},
				{"Size", formatBytes(info.SizeBytes)},
				{"Forks", fmt.Sprint(info.Forks)},
				{"Last full sync", last},
				{"Schema version", fmt.Sprint(info.SchemaVersion)},
			}))
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached fork; the next start fetches from GitHub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(); err != nil {
				return err
			}
			logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout()).Success("Cache cleared")
			return nil
		},
	}
}

func formatBytes(n int64) string {
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
