package cmd

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/pkg/logging/logutil"
	"github.com/grovetools/forksync/pkg/paths"
	"github.com/grovetools/forksync/tui/theme"
)

func newLogsCmd() *cobra.Command {
	var (
		follow bool
		lines  int
	)

	cmd := &cobra.Command{
		Use:   "logs [component...]",
		Short: "Show forksync log files",
		Long: `Print the most recent log file of each component (forksync, engine,
reconcile, github, git, catalog, cache, tui). Name components to narrow
the output.

Examples:
  forksync logs
  forksync logs reconcile -n 200
  forksync logs -f`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := findLogFiles(paths.LogDir(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "No log files in %s\n", paths.LogDir())
				return nil
			}

			prefix := len(files) > 1
			for _, f := range files {
				last, err := lastLines(f.Path, lines)
				if err != nil {
					return err
				}
				for _, line := range last {
					printLogLine(out, f.Component, line, prefix)
				}
			}
			if !follow {
				return nil
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return followLogs(ctx, out, files, prefix)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Lines to show from the end of each file (0 for all)")
	return cmd
}

// findLogFiles returns the files to show: the FORKSYNC_LOG_FILE target
// when set, otherwise the newest file per component in dir.
func findLogFiles(dir string, components []string) ([]logutil.File, error) {
	if env := os.Getenv(logging.EnvFile); env != "" && !strings.EqualFold(env, "off") {
		return []logutil.File{{Component: "forksync", Path: paths.ExpandHome(env)}}, nil
	}
	if dir == "" {
		return nil, nil
	}
	return logutil.FindComponentLogs(dir, components...)
}

func tailConfig(follow bool) tail.Config {
	cfg := tail.Config{
		Follow: follow,
		ReOpen: follow,
		Logger: stdlog.New(io.Discard, "", 0),
	}
	if follow {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}
	return cfg
}

// lastLines returns the final n lines of path, or all of them when n <= 0.
func lastLines(path string, n int) ([]string, error) {
	t, err := tail.TailFile(path, tailConfig(false))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer t.Cleanup()

	var out []string
	for line := range t.Lines {
		if line.Err != nil {
			continue
		}
		out = append(out, line.Text)
		if n > 0 && len(out) > n {
			out = out[1:]
		}
	}
	return out, nil
}

// followLogs streams new lines from every file until ctx is cancelled.
func followLogs(ctx context.Context, out io.Writer, files []logutil.File, prefix bool) error {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		tails []*tail.Tail
	)

	for _, f := range files {
		t, err := tail.TailFile(f.Path, tailConfig(true))
		if err != nil {
			return fmt.Errorf("failed to follow %s: %w", f.Path, err)
		}
		tails = append(tails, t)

		wg.Add(1)
		go func(component string, t *tail.Tail) {
			defer wg.Done()
			for line := range t.Lines {
				if line.Err != nil {
					continue
				}
				mu.Lock()
				printLogLine(out, component, line.Text, prefix)
				mu.Unlock()
			}
		}(f.Component, t)
	}

	<-ctx.Done()
	for _, t := range tails {
		_ = t.Stop()
		t.Cleanup()
	}
	wg.Wait()
	return nil
}

func printLogLine(out io.Writer, component, line string, prefix bool) {
	if !prefix {
		fmt.Fprintln(out, line)
		return
	}
	fmt.Fprintf(out, "%s %s\n", theme.Default().Accent.Render(fmt.Sprintf("%-10s", component)), line)
}
