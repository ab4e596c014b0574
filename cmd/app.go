package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/forksync/cli"
	"github.com/grovetools/forksync/command"
	"github.com/grovetools/forksync/config"
	"github.com/grovetools/forksync/git"
	"github.com/grovetools/forksync/github"
	"github.com/grovetools/forksync/internal/cache"
	"github.com/grovetools/forksync/internal/catalog"
	"github.com/grovetools/forksync/internal/engine"
	"github.com/grovetools/forksync/internal/reconcile"
	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/pkg/models"
	"github.com/grovetools/forksync/pkg/paths"
	"github.com/grovetools/forksync/pkg/profiling"
	"github.com/grovetools/forksync/tui/theme"
)

// app holds the components wired for one invocation.
type app struct {
	cfg      *config.Config
	opts     cli.CommandOptions
	toolHome string
	store    *cache.Store
	gh       *github.Client
	git      *git.Client
	catalog  *catalog.Catalog
	engine   *engine.Engine
	log      *logrus.Entry
}

// newApp loads configuration and wires the cache, the gh and git clients,
// the catalog and the engine. A cache that cannot be opened is not fatal;
// every load then fetches from GitHub.
func newApp(cmd *cobra.Command, toolHomeFlag string) (*app, error) {
	opts := cli.GetOptions(cmd)
	doneConfig := profiling.Track("load config")
	cfg, err := cli.LoadConfig(opts)
	doneConfig()
	if err != nil {
		return nil, err
	}
	applyTheme(cfg)

	a := &app{
		cfg:      cfg,
		opts:     opts,
		toolHome: resolveToolHome(toolHomeFlag, cfg),
		log:      logging.NewLogger("forksync"),
	}

	if err := paths.EnsureDirs(); err != nil {
		a.log.WithError(err).Warn("Failed to create forksync directories")
	}
	doneCache := profiling.Track("open cache")
	db, err := cache.Open(cachePath())
	doneCache()
	if err != nil {
		a.log.WithError(err).Warn("Cache unavailable, forks will be fetched from GitHub")
	} else {
		a.store = db
	}

	inv := command.NewSafeBuilder().WithDefaultTimeout(cfg.Timeouts.Command)
	ghOpts := []github.Option{github.WithTimeouts(github.Timeouts{
		Command: cfg.Timeouts.Command,
		Clone:   cfg.Timeouts.Clone,
		API:     cfg.Timeouts.API,
	})}
	if token := cfg.GitHubToken(); token != "" {
		a.log.Debug("Using the GitHub REST API for commit counts")
		ghOpts = append(ghOpts, github.WithAPI(github.NewAPIClient(token,
			github.WithBaseURL(cfg.GitHub.APIURL),
			github.WithHTTPTimeout(cfg.Timeouts.API),
		)))
	}
	a.gh = github.NewClient(inv, ghOpts...)
	a.git = git.NewClient(inv)

	// A nil *cache.Store must not reach the catalog as a non-nil interface.
	var store catalog.Store
	if a.store != nil {
		store = a.store
	}
	a.catalog, err = catalog.New(store, a.gh, a.toolHome, cfg.Exclude, catalog.WithStaleAfter(cfg.StaleAfter))
	if err != nil {
		a.Close()
		return nil, err
	}

	rec := reconcile.New(a.git, a.gh, reconcile.WithDryRunDelay(cfg.DryRunDelay))
	a.engine = engine.New(rec,
		engine.WithBatchPause(cfg.BatchPause),
		engine.WithRefresher(a.catalog),
	)

	a.log.WithFields(logrus.Fields{
		"tool_home": a.toolHome,
		"config":    cfg.Source,
	}).Debug("Initialized")
	return a, nil
}

// Close waits for in-flight workers and releases the cache.
func (a *app) Close() {
	if a.engine != nil {
		a.engine.Wait()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close cache")
		}
	}
}

// load returns the fork list following the startup policy.
func (a *app) load(ctx context.Context, refresh bool) ([]models.Fork, models.CacheStatus, error) {
	defer profiling.Track("load forks")()
	forks, status, err := a.catalog.Load(ctx, refresh)
	if err != nil {
		return nil, status, err
	}
	a.log.WithFields(logrus.Fields{
		"forks": len(forks),
		"cache": status.Kind.String(),
	}).Debug("Loaded forks")
	return forks, status, nil
}

// resolveToolHome applies flag > TOOL_HOME > config > default.
func resolveToolHome(flag string, cfg *config.Config) string {
	switch {
	case flag != "":
		return paths.ExpandHome(flag)
	case os.Getenv(paths.ToolHomeEnv) != "":
		return paths.ExpandHome(os.Getenv(paths.ToolHomeEnv))
	case cfg != nil && cfg.ToolHome != "":
		return paths.ExpandHome(cfg.ToolHome)
	}
	return paths.DefaultToolHome()
}

func cachePath() string {
	return filepath.Join(paths.CacheDir(), cache.FileName)
}

// applyTheme honors the config file's theme unless FORKSYNC_THEME is set.
func applyTheme(cfg *config.Config) {
	if os.Getenv("FORKSYNC_THEME") != "" || cfg.Theme == "" {
		return
	}
	theme.SetDefault(theme.New(cfg.Theme))
}
