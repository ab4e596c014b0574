package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneWatcherReportsNewClones(t *testing.T) {
	root := filepath.Join(t.TempDir(), "clones")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "alice"), 0o755))

	changed := make(chan struct{}, 10)
	w, err := NewCloneWatcher(root, 20*time.Millisecond, func() { changed <- struct{}{} })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "alice", "widget"), 0o755))
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for new clone")
	}

	// A new owner directory is picked up and its clones observed.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bob"), 0o755))
	time.Sleep(100 * time.Millisecond)
	drain(changed)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bob", "gadget"), 0o755))
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported under new owner")
	}

	require.NoError(t, os.RemoveAll(filepath.Join(root, "alice", "widget")))
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for removal")
	}
}

func TestCloneWatcherIgnoresDeepChanges(t *testing.T) {
	root := t.TempDir()
	clone := filepath.Join(root, "alice", "widget")
	require.NoError(t, os.MkdirAll(clone, 0o755))

	w, err := NewCloneWatcher(root, time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 0, w.depth(root))
	assert.Equal(t, 1, w.depth(filepath.Join(root, "alice")))
	assert.Equal(t, 2, w.depth(clone))
	assert.Equal(t, 3, w.depth(filepath.Join(clone, "README.md")))
	assert.Equal(t, 0, w.depth("/elsewhere"))
}

func drain(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
