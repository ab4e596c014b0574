package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/grovetools/forksync/cli"
	"github.com/grovetools/forksync/errors"
	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/pkg/models"
	"github.com/grovetools/forksync/tui"
	"github.com/grovetools/forksync/tui/forknav"
	"github.com/grovetools/forksync/tui/keymap"
	"github.com/grovetools/forksync/tui/theme"
)

func runRoot(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(cmd, opts.toolHome)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.gh.CheckInstalled(ctx); err != nil {
		// Cached forks are still browsable without gh.
		a.log.WithError(err).Warn("gh is not ready")
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", theme.Icons.Warning, err)
		if hint := cli.Hint(err); hint != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), theme.Default().Muted.Render(hint))
		}
	}

	forks, status, err := a.load(ctx, opts.refresh)
	if err != nil {
		return err
	}

	if opts.plain || !isTerminal(os.Stdout) {
		return runPlain(ctx, cmd.OutOrStdout(), a, forks, opts)
	}
	return runInteractive(ctx, cmd.OutOrStdout(), a, forks, status, opts)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func runInteractive(ctx context.Context, out io.Writer, a *app, forks []models.Fork, status models.CacheStatus, opts *rootOptions) error {
	tui.InitializeTUI()

	// Structured logs would corrupt the alternate screen.
	prev := logging.SetStderrOutput(io.Discard)
	defer logging.SetStderrOutput(prev)

	keys, err := keymap.FromConfig(a.cfg)
	if err != nil {
		a.log.WithError(err).Warn("Ignoring invalid keys section")
	}

	m := forknav.New(forknav.Config{
		Forks:        forks,
		Cache:        status,
		Engine:       a.engine,
		Catalog:      a.catalog,
		Browser:      a.gh,
		Git:          a.git,
		ToolHome:     a.toolHome,
		DryRun:       opts.dryRun,
		AutoSync:     opts.yes,
		AutoRefresh:  a.cfg.AutoRefresh,
		Watch:        true,
		PollInterval: a.cfg.PollInterval,
		Keys:         keys,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "interactive UI failed")
	}

	if report := m.Summary().Report(); report != "" {
		fmt.Fprint(out, report)
	}
	return nil
}

// runPlain syncs every cloned fork with --yes and prints one line per
// status change. Without --yes it lists the forks.
func runPlain(ctx context.Context, out io.Writer, a *app, forks []models.Fork, opts *rootOptions) error {
	if !opts.yes {
		if err := printForks(out, forks, a.opts.JSONOutput); err != nil {
			return err
		}
		if !a.opts.JSONOutput {
			fmt.Fprintln(out, theme.Default().Muted.Render("\nRun with --yes to sync every cloned fork."))
		}
		return nil
	}

	var jobs []models.SyncJob
	for i, f := range forks {
		if f.IsCloned {
			jobs = append(jobs, models.NewSyncJob(i, f))
		}
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No cloned forks to sync")
		return nil
	}

	reporter := cli.NewProgressReporter(out, forks, a.opts.JSONOutput)
	a.engine.StartBatchSync(ctx, jobs, opts.dryRun)

	done := make(chan struct{})
	go func() {
		a.engine.Wait()
		close(done)
	}()
	reporter.Run(a.engine.Events().Drain, done, a.cfg.PollInterval)
	reporter.Done()
	return nil
}
