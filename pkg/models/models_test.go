package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncStatusTerminal(t *testing.T) {
	tests := []struct {
		status   SyncStatus
		terminal bool
		idle     bool
	}{
		{Pending(), false, true},
		{Checking(), false, false},
		{Cloning(), false, false},
		{Stashing(), false, false},
		{Fetching(), false, false},
		{Syncing(), false, false},
		{Restoring(), false, false},
		{Archiving(), false, false},
		{Deleting(), false, false},
		{Synced(), true, true},
		{SyncedCount(3), true, true},
		{Skipped("unpushed commits"), true, true},
		{Failed("sync failed"), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.idle, tt.status.IsIdle())
		})
	}
}

func TestSyncStatusDisplay(t *testing.T) {
	assert.Equal(t, "synced", Synced().Display())
	assert.Equal(t, "synced", SyncedCount(0).Display())
	assert.Equal(t, "synced (+4)", SyncedCount(4).Display())
	assert.Equal(t, "skipped: unpushed commits", Skipped("unpushed commits").Display())
	assert.Equal(t, "failed: timed out", Failed("timed out").Display())
	assert.Equal(t, "stashing", Stashing().Display())
}

func TestSyncedWith(t *testing.T) {
	assert.Equal(t, Synced(), SyncedWith(nil))
	n := 7
	assert.Equal(t, SyncedCount(7), SyncedWith(&n))
}

func TestSyncStatusJSON(t *testing.T) {
	data, err := json.Marshal(SyncedCount(2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"synced","count":2}`, string(data))

	data, err = json.Marshal(Failed("checkout failed"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"failed","reason":"checkout failed"}`, string(data))
}

func TestForkKeys(t *testing.T) {
	f := Fork{Owner: "alice", Name: "widget", ParentOwner: "org", ParentName: "widget"}
	assert.Equal(t, "alice/widget", f.Key())
	assert.Equal(t, "org/widget", f.ParentFullName())
	assert.Equal(t, "org/widget", f.SearchText())
	assert.Equal(t, filepath.Join("/src", "alice", "widget"), LocalPathFor("/src", "alice", "widget"))
}

func TestRefreshCloned(t *testing.T) {
	dir := t.TempDir()
	f := Fork{Owner: "alice", Name: "widget", LocalPath: filepath.Join(dir, "alice", "widget")}

	assert.False(t, f.RefreshCloned().IsCloned)

	require.NoError(t, os.MkdirAll(f.LocalPath, 0o755))
	assert.True(t, f.RefreshCloned().IsCloned)
	assert.False(t, f.IsCloned, "RefreshCloned must not mutate the receiver")
}

func TestIsStructural(t *testing.T) {
	assert.True(t, IsStructural(ForkCloned{}))
	assert.True(t, IsStructural(ForkArchived{}))
	assert.True(t, IsStructural(ForkDeleted{}))
	assert.True(t, IsStructural(ForksRefreshed{}))
	assert.False(t, IsStructural(StatusUpdate{}))
	assert.False(t, IsStructural(RefreshFailed{}))
	assert.False(t, IsStructural(ActionableError{}))
}

func TestComputeStats(t *testing.T) {
	forks := []Fork{
		{Owner: "a", Name: "1", Language: "Go", IsCloned: true},
		{Owner: "a", Name: "2", Language: "Go"},
		{Owner: "a", Name: "3", Language: "Rust", IsCloned: true},
		{Owner: "a", Name: "4"},
	}
	statuses := []SyncStatus{SyncedCount(1), Failed("x"), Skipped("y")}

	stats := ComputeStats(forks, statuses)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Cloned)
	assert.Equal(t, 2, stats.Uncloned)
	assert.Equal(t, 1, stats.Synced)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Pending)
	require.Len(t, stats.Languages, 3)
	assert.Equal(t, LanguageCount{Language: "Go", Count: 2}, stats.Languages[0])
	assert.Equal(t, LanguageCount{Language: "Rust", Count: 1}, stats.Languages[1])
	assert.Equal(t, LanguageCount{Language: "Unknown", Count: 1}, stats.Languages[2])
}

func TestComputeStatsCapsLanguages(t *testing.T) {
	var forks []Fork
	for _, lang := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"} {
		forks = append(forks, Fork{Owner: "o", Name: lang, Language: lang})
	}
	stats := ComputeStats(forks, nil)
	assert.Len(t, stats.Languages, MaxStatsLanguages)
	assert.Equal(t, 10, stats.Pending)
}

func TestCacheStatusLabel(t *testing.T) {
	assert.Equal(t, "fresh", CacheStatus{Kind: CacheFresh}.Label())
	assert.Equal(t, "offline", CacheStatus{Kind: CacheOffline}.Label())
	assert.Equal(t, "refreshing...", CacheStatus{Kind: CacheStale, Refreshing: true}.Label())
}

func TestTarget(t *testing.T) {
	idx, key, ok := Target(StatusUpdate{Index: 2, Key: "a/b", Status: Syncing()})
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Equal(t, "a/b", key)

	_, _, ok = Target(ForksRefreshed{})
	assert.False(t, ok)
	_, _, ok = Target(RefreshFailed{Reason: "x"})
	assert.False(t, ok)
}

func TestResolveIndex(t *testing.T) {
	forks := []Fork{
		{Owner: "a", Name: "one"},
		{Owner: "a", Name: "two"},
		{Owner: "a", Name: "three"},
	}

	tests := []struct {
		name  string
		index int
		key   string
		want  int
		ok    bool
	}{
		{"index matches key", 1, "a/two", 1, true},
		{"list shifted", 2, "a/two", 1, true},
		{"index out of range", 7, "a/three", 2, true},
		{"fork gone", 0, "a/missing", 0, false},
		{"no key in range", 2, "", 2, true},
		{"no key out of range", 5, "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveIndex(forks, tt.index, tt.key)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
