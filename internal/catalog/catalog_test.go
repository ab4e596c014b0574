package catalog

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/forksync/errors"
	"github.com/grovetools/forksync/internal/cache"
	"github.com/grovetools/forksync/pkg/models"
)

type stubFetcher struct {
	forks []models.Fork
	err   error
	calls int32
	gate  chan struct{}
}

func (s *stubFetcher) FetchForks(_ context.Context, toolHome string) ([]models.Fork, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.Fork, len(s.forks))
	for i, f := range s.forks {
		f.LocalPath = models.LocalPathFor(toolHome, f.Owner, f.Name)
		out[i] = f
	}
	return out, nil
}

func remoteForks() []models.Fork {
	return []models.Fork{
		{Owner: "alice", Name: "widget", ParentOwner: "org", ParentName: "widget", DefaultBranch: "main"},
		{Owner: "alice", Name: "legacy-tool", ParentOwner: "org", ParentName: "legacy-tool", DefaultBranch: "main"},
	}
}

func openStore(t *testing.T) *cache.Store {
	t.Helper()
	s, err := cache.Open(filepath.Join(t.TempDir(), cache.FileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestLoadEmptyCacheFetches(t *testing.T) {
	store := openStore(t)
	fetcher := &stubFetcher{forks: remoteForks()}
	c, err := New(store, fetcher, "/src", nil, WithClock(clock))
	require.NoError(t, err)

	forks, status, err := c.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, forks, 2)
	assert.Equal(t, models.CacheFresh, status.Kind)

	n, _ := store.ForkCount()
	assert.Equal(t, 2, n)
	last, _ := store.LastFullSync()
	require.NotNil(t, last)
	assert.True(t, fixedNow.Equal(*last))
}

func TestLoadEmptyCacheFetchFailureIsFatal(t *testing.T) {
	c, err := New(openStore(t), &stubFetcher{err: errors.FetchFailed(stderrors.New("gh: not logged in"))}, "/src", nil)
	require.NoError(t, err)

	_, _, err = c.Load(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFetchFailed, errors.GetCode(err))
}

func TestLoadUsesFreshCache(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.SaveForks(remoteForks()))
	require.NoError(t, store.SetLastFullSync(fixedNow.Add(-time.Hour)))

	fetcher := &stubFetcher{}
	c, err := New(store, fetcher, "/src", nil, WithClock(clock))
	require.NoError(t, err)

	forks, status, err := c.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, forks, 2)
	assert.Equal(t, models.CacheFresh, status.Kind)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fetcher.calls))
	assert.Equal(t, filepath.Join("/src", "alice", "legacy-tool"), forks[0].LocalPath)
}

func TestLoadStaleCache(t *testing.T) {
	tests := []struct {
		name string
		last *time.Time
	}{
		{"older than threshold", ptr(fixedNow.Add(-25 * time.Hour))},
		{"exactly at threshold", ptr(fixedNow.Add(-24 * time.Hour))},
		{"never synced", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openStore(t)
			require.NoError(t, store.SaveForks(remoteForks()))
			if tt.last != nil {
				require.NoError(t, store.SetLastFullSync(*tt.last))
			}
			c, err := New(store, &stubFetcher{}, "/src", nil, WithClock(clock))
			require.NoError(t, err)

			_, status, err := c.Load(context.Background(), false)
			require.NoError(t, err)
			assert.Equal(t, models.CacheStale, status.Kind)
		})
	}
}

func TestLoadForceRefreshFallsBackOffline(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.SaveForks(remoteForks()[:1]))

	c, err := New(store, &stubFetcher{err: stderrors.New("network down")}, "/src", nil, WithClock(clock))
	require.NoError(t, err)

	forks, status, err := c.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, forks, 1)
	assert.Equal(t, models.CacheOffline, status.Kind)
}

func TestLoadWithoutStore(t *testing.T) {
	c, err := New(nil, &stubFetcher{forks: remoteForks()}, "/src", nil)
	require.NoError(t, err)

	forks, status, err := c.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, forks, 2)
	assert.Equal(t, models.CacheFresh, status.Kind)

	c.Forget(forks[0])
	c.Remember(forks[0])
}

func TestExcludePatterns(t *testing.T) {
	store := openStore(t)
	c, err := New(store, &stubFetcher{forks: remoteForks()}, "/src", []string{"alice/legacy-*"})
	require.NoError(t, err)

	forks, _, err := c.Load(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, forks, 1)
	assert.Equal(t, "alice/widget", forks[0].Key())

	// Excluded forks are still cached so removing the pattern restores them.
	n, _ := store.ForkCount()
	assert.Equal(t, 2, n)

	c, err = New(store, &stubFetcher{}, "/src", []string{"alice"})
	require.NoError(t, err)
	assert.True(t, c.Excluded(remoteForks()[0]), "owner pattern matches as a parent")
}

func TestInvalidExcludePattern(t *testing.T) {
	_, err := New(nil, &stubFetcher{}, "/src", []string{"[unterminated"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigValidation, errors.GetCode(err))
}

func TestRefreshCollapsesConcurrentCalls(t *testing.T) {
	fetcher := &stubFetcher{forks: remoteForks(), gate: make(chan struct{})}
	c, err := New(openStore(t), fetcher, "/src", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]models.Fork, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			forks, err := c.Refresh(context.Background())
			assert.NoError(t, err)
			results[i] = forks
		}(i)
	}

	// Give all callers time to join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(fetcher.gate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
	for _, r := range results {
		assert.Len(t, r, 2)
	}
}

func TestForgetAndRemember(t *testing.T) {
	store := openStore(t)
	c, err := New(store, &stubFetcher{forks: remoteForks()}, "/src", nil)
	require.NoError(t, err)
	forks, _, err := c.Load(context.Background(), false)
	require.NoError(t, err)

	c.Forget(forks[0])
	has, _ := store.HasFork("alice", "widget")
	assert.False(t, has)

	c.Remember(forks[0])
	has, _ = store.HasFork("alice", "widget")
	assert.True(t, has)
}

func TestRecomputeCloned(t *testing.T) {
	home := t.TempDir()
	forks := []models.Fork{
		{Owner: "a", Name: "x", LocalPath: filepath.Join(home, "a", "x"), IsCloned: true},
		{Owner: "a", Name: "y", LocalPath: filepath.Join(home, "a", "y")},
	}
	require.NoError(t, os.MkdirAll(forks[1].LocalPath, 0o755))

	out := RecomputeCloned(forks)
	assert.False(t, out[0].IsCloned)
	assert.True(t, out[1].IsCloned)
	assert.True(t, forks[0].IsCloned, "input is not mutated")
}

func ptr(t time.Time) *time.Time { return &t }
