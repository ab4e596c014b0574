package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grovetools/forksync/cli"
	"github.com/grovetools/forksync/pkg/profiling"
	"github.com/grovetools/forksync/version"
)

// rootOptions are the flags of the interactive root command.
type rootOptions struct {
	toolHome string
	dryRun   bool
	yes      bool
	refresh  bool
	plain    bool
}

// NewRootCmd creates the forksync command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := cli.NewStandardCommand("forksync", "Keep your GitHub forks in sync with their parents")
	root.Long = `Lists the forks you own on GitHub, shows which are cloned under the tool
home, and syncs them with their parent repositories. Local clones are
stashed, fast-forwarded and restored; remote-only forks are synced with
gh repo sync.

Examples:
  # Pick forks interactively
  forksync

  # Sync every cloned fork without prompting
  forksync --yes

  # Preview a sync without touching anything
  forksync --yes --dry-run --plain

  # Refetch the fork list from GitHub first
  forksync --refresh`
	root.Args = cobra.NoArgs
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runRoot(cmd, opts)
	}

	flags := root.Flags()
	flags.StringVar(&opts.toolHome, "tool-home", "", "Clone root (default $TOOL_HOME or ~/dev/github.com)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Simulate operations without running git or gh")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "Select all cloned forks and start syncing immediately")
	flags.BoolVarP(&opts.refresh, "refresh", "r", false, "Fetch the fork list from GitHub instead of the cache")
	flags.BoolVar(&opts.plain, "plain", false, "Print progress lines instead of starting the interactive UI")

	profiling.Default.AddFlags(root)
	root.PersistentPreRunE = profiling.Default.PreRun
	root.PersistentPostRun = profiling.Default.PostRun

	cli.SetVersionTemplate(root, version.GetInfo())

	root.AddCommand(
		newListCmd(),
		newStatsCmd(),
		newCacheCmd(),
		newConfigCmd(),
		newLogsCmd(),
		cli.NewVersionCommand("forksync"),
	)

	cli.ApplyStyledHelpRecursive(root)
	return root
}
