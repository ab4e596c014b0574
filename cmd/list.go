package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovetools/forksync/pkg/models"
	"github.com/grovetools/forksync/tui/components/table"
	"github.com/grovetools/forksync/tui/theme"
)

func newListCmd() *cobra.Command {
	var (
		toolHome string
		refresh  bool
		cloned   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your forks and whether they are cloned",
		Long: `List the forks you own, read from the cache unless it is empty or
--refresh is given.

Examples:
  forksync list
  forksync list --cloned
  forksync list --refresh --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, toolHome)
			if err != nil {
				return err
			}
			defer a.Close()

			forks, _, err := a.load(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			if cloned {
				forks = onlyCloned(forks)
			}
			return printForks(cmd.OutOrStdout(), forks, a.opts.JSONOutput)
		},
	}

	cmd.Flags().StringVar(&toolHome, "tool-home", "", "Clone root (default $TOOL_HOME or ~/dev/github.com)")
	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Fetch the fork list from GitHub")
	cmd.Flags().BoolVar(&cloned, "cloned", false, "Only show forks cloned locally")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var toolHome string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize forks by clone state and language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, toolHome)
			if err != nil {
				return err
			}
			defer a.Close()

			forks, status, err := a.load(cmd.Context(), false)
			if err != nil {
				return err
			}
			stats := models.ComputeStats(forks, nil)
			out := cmd.OutOrStdout()

			if a.opts.JSONOutput {
				return writeJSON(out, stats)
			}

			t := theme.Default()
			fmt.Fprintln(out, t.Title.Render("Fork statistics")+"  "+t.Muted.Render("cache: "+status.Label()))
			fmt.Fprintln(out, table.KeyValueTable([][2]string{
				{"Total", fmt.Sprint(stats.Total)},
				{"Cloned", fmt.Sprint(stats.Cloned)},
				{"Not cloned", fmt.Sprint(stats.Uncloned)},
			}))
			if len(stats.Languages) > 0 {
				rows := make([][]string, len(stats.Languages))
				for i, l := range stats.Languages {
					rows[i] = []string{l.Language, fmt.Sprint(l.Count)}
				}
				fmt.Fprintln(out, table.SimpleTable([]string{"LANGUAGE", "FORKS"}, rows))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&toolHome, "tool-home", "", "Clone root (default $TOOL_HOME or ~/dev/github.com)")
	return cmd
}

func onlyCloned(forks []models.Fork) []models.Fork {
	var out []models.Fork
	for _, f := range forks {
		if f.IsCloned {
			out = append(out, f)
		}
	}
	return out
}

// printForks writes forks as a table or a JSON array.
func printForks(out io.Writer, forks []models.Fork, jsonOutput bool) error {
	if jsonOutput {
		if forks == nil {
			forks = []models.Fork{}
		}
		return writeJSON(out, forks)
	}
	if len(forks) == 0 {
		fmt.Fprintln(out, "No forks found.")
		return nil
	}

	rows := make([][]string, len(forks))
	for i, f := range forks {
		local := theme.Icons.Remote
		if f.IsCloned {
			local = theme.Icons.Cloned + " " + f.LocalPath
		}
		rows[i] = []string{f.Key(), f.ParentFullName(), orDash(f.Language), local}
	}
	fmt.Fprintln(out, table.SimpleTable([]string{"FORK", "PARENT", "LANGUAGE", "LOCAL"}, rows))
	return nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func writeJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
