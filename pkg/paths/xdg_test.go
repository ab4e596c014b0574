package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortableHome(t *testing.T) {
	root := t.TempDir()
	t.Setenv("FORKSYNC_HOME", root)
	t.Setenv("XDG_CONFIG_HOME", "/ignored")

	assert.Equal(t, filepath.Join(root, "config"), ConfigDir())
	assert.Equal(t, filepath.Join(root, "data"), DataDir())
	assert.Equal(t, filepath.Join(root, "state"), StateDir())
	assert.Equal(t, filepath.Join(root, "cache"), CacheDir())
	assert.Equal(t, filepath.Join(root, "state", "logs"), LogDir())

	require.NoError(t, EnsureDirs())
	for _, dir := range []string{ConfigDir(), StateDir(), CacheDir(), LogDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestXDGOverrides(t *testing.T) {
	t.Setenv("FORKSYNC_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")

	assert.Equal(t, "/xdg/config/forksync", ConfigDir())
	assert.Equal(t, "/xdg/state/forksync", StateDir())
	assert.Equal(t, "/xdg/cache/forksync", CacheDir())
}

func TestPlatformDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FORKSYNC_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", "")

	assert.Equal(t, filepath.Join(home, ".config", "forksync"), ConfigDir())
	assert.Equal(t, filepath.Join(home, ".local", "state", "forksync"), StateDir())
}

func TestDefaultToolHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Setenv(ToolHomeEnv, "")
	assert.Equal(t, filepath.Join(home, "dev", "github.com"), DefaultToolHome())

	t.Setenv(ToolHomeEnv, "/srv/forks")
	assert.Equal(t, "/srv/forks", DefaultToolHome())
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in, want string
	}{
		{"~", home},
		{"~/src", filepath.Join(home, "src")},
		{"~alice/src", "~alice/src"},
		{"/abs/path", "/abs/path"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandHome(tt.in), tt.in)
	}
}
