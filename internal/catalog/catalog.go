// Package catalog decides where the fork list comes from at startup and
// keeps the cache in step with refreshes and structural changes.
package catalog

import (
	"context"
	"time"

	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/grovetools/forksync/errors"
	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/pkg/models"
)

// DefaultStaleAfter is how old the last full fetch may be before the cache
// counts as stale.
const DefaultStaleAfter = 24 * time.Hour

// Store is the subset of the cache the catalog uses.
type Store interface {
	LoadForks(toolHome string) ([]models.Fork, error)
	SaveForks(forks []models.Fork) error
	RemoveFork(owner, name string) error
	IsEmpty() (bool, error)
	LastFullSync() (*time.Time, error)
	SetLastFullSync(when time.Time) error
}

// Fetcher lists forks from GitHub.
type Fetcher interface {
	FetchForks(ctx context.Context, toolHome string) ([]models.Fork, error)
}

// Catalog loads and refreshes the fork list.
type Catalog struct {
	store      Store
	fetcher    Fetcher
	toolHome   string
	staleAfter time.Duration
	exclude    *patternmatcher.PatternMatcher
	now        func() time.Time
	group      singleflight.Group
	log        *logrus.Entry
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithStaleAfter overrides DefaultStaleAfter.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.staleAfter = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// New creates a Catalog. store may be nil when the cache could not be
// opened; every load then fetches. exclude holds patterns matched against
// owner/name, for example "alice/legacy-*".
func New(store Store, fetcher Fetcher, toolHome string, exclude []string, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		store:      store,
		fetcher:    fetcher,
		toolHome:   toolHome,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
		log:        logging.NewLogger("catalog"),
	}
	if len(exclude) > 0 {
		pm, err := patternmatcher.New(exclude)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid exclude pattern")
		}
		c.exclude = pm
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ToolHome returns the clone root.
func (c *Catalog) ToolHome() string {
	return c.toolHome
}

// Load returns the fork list and how current it is. A forced refresh or an
// empty cache fetches from GitHub; if that fails with cached data present
// the cached list is returned as Offline. Only a failed fetch with nothing
// cached is an error.
func (c *Catalog) Load(ctx context.Context, forceRefresh bool) ([]models.Fork, models.CacheStatus, error) {
	if c.store == nil {
		forks, err := c.Refresh(ctx)
		if err != nil {
			return nil, models.CacheStatus{}, err
		}
		now := c.now()
		return forks, models.CacheStatus{Kind: models.CacheFresh, LastSync: &now}, nil
	}

	empty, err := c.store.IsEmpty()
	if err != nil {
		c.log.WithError(err).Warn("Failed to inspect cache, treating as empty")
		empty = true
	}

	if forceRefresh || empty {
		forks, err := c.Refresh(ctx)
		if err == nil {
			now := c.now()
			return forks, models.CacheStatus{Kind: models.CacheFresh, LastSync: &now}, nil
		}
		if empty {
			return nil, models.CacheStatus{}, err
		}
		c.log.WithError(err).Warn("GitHub fetch failed, using cache")
		forks, loadErr := c.loadCached()
		if loadErr != nil {
			return nil, models.CacheStatus{}, loadErr
		}
		last, _ := c.store.LastFullSync()
		return forks, models.CacheStatus{Kind: models.CacheOffline, LastSync: last}, nil
	}

	forks, err := c.loadCached()
	if err != nil {
		return nil, models.CacheStatus{}, err
	}
	last, err := c.store.LastFullSync()
	if err != nil {
		c.log.WithError(err).Warn("Failed to read last sync time")
	}
	return forks, models.CacheStatus{Kind: c.classify(last), LastSync: last}, nil
}

func (c *Catalog) classify(last *time.Time) models.CacheKind {
	if last == nil || c.now().Sub(*last) >= c.staleAfter {
		return models.CacheStale
	}
	return models.CacheFresh
}

// Refresh fetches the full fork list and writes it to the cache.
// Concurrent calls share one fetch.
func (c *Catalog) Refresh(ctx context.Context) ([]models.Fork, error) {
	v, err, shared := c.group.Do("refresh", func() (interface{}, error) {
		forks, err := c.fetcher.FetchForks(ctx, c.toolHome)
		if err != nil {
			return nil, err
		}
		c.persist(forks)
		return forks, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debug("Joined in-flight refresh")
	}
	return c.filter(v.([]models.Fork)), nil
}

// persist saves forks and the sync time. Cache write failures are logged;
// the fetched list is still usable.
func (c *Catalog) persist(forks []models.Fork) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveForks(forks); err != nil {
		c.log.WithError(err).Warn("Failed to save forks to cache")
	}
	if err := c.store.SetLastFullSync(c.now()); err != nil {
		c.log.WithError(err).Warn("Failed to update last sync time")
	}
}

func (c *Catalog) loadCached() ([]models.Fork, error) {
	forks, err := c.store.LoadForks(c.toolHome)
	if err != nil {
		return nil, err
	}
	return c.filter(forks), nil
}

// Excluded reports whether the fork matches an exclude pattern.
func (c *Catalog) Excluded(f models.Fork) bool {
	if c.exclude == nil {
		return false
	}
	matched, err := c.exclude.MatchesOrParentMatches(f.Key())
	if err != nil {
		c.log.WithError(err).WithField("fork", f.Key()).Debug("Exclude match failed")
		return false
	}
	return matched
}

func (c *Catalog) filter(forks []models.Fork) []models.Fork {
	if c.exclude == nil {
		return forks
	}
	out := make([]models.Fork, 0, len(forks))
	for _, f := range forks {
		if !c.Excluded(f) {
			out = append(out, f)
		}
	}
	return out
}

// Forget drops a fork from the cache after it was archived or deleted.
func (c *Catalog) Forget(f models.Fork) {
	if c.store == nil {
		return
	}
	if err := c.store.RemoveFork(f.Owner, f.Name); err != nil {
		c.log.WithError(err).WithField("fork", f.Key()).Warn("Failed to remove fork from cache")
	}
}

// Remember upserts a single fork, for example after it was cloned.
func (c *Catalog) Remember(f models.Fork) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveForks([]models.Fork{f}); err != nil {
		c.log.WithError(err).WithField("fork", f.Key()).Warn("Failed to update fork in cache")
	}
}

// RecomputeCloned refreshes IsCloned for every fork from disk.
func RecomputeCloned(forks []models.Fork) []models.Fork {
	out := make([]models.Fork, len(forks))
	for i, f := range forks {
		out[i] = f.RefreshCloned()
	}
	return out
}
