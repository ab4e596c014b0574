// Package paths resolves where forksync keeps its files.
//
// Resolution order:
// 1. FORKSYNC_HOME (portable root) → $FORKSYNC_HOME/{config,data,state,cache}
// 2. XDG env vars → $XDG_*_HOME/forksync
// 3. Platform defaults → ~/.config/forksync, ~/.local/state/forksync, etc.
package paths

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under each XDG base.
const AppName = "forksync"

// ToolHomeEnv overrides the default clone root.
const ToolHomeEnv = "TOOL_HOME"

type base struct {
	portable string
	xdgEnv   string
	fallback []string
}

var (
	configBase = base{"config", "XDG_CONFIG_HOME", []string{".config"}}
	dataBase   = base{"data", "XDG_DATA_HOME", []string{".local", "share"}}
	stateBase  = base{"state", "XDG_STATE_HOME", []string{".local", "state"}}
	cacheBase  = base{"cache", "XDG_CACHE_HOME", []string{".cache"}}
)

func (b base) dir() string {
	if home := os.Getenv("FORKSYNC_HOME"); home != "" {
		return filepath.Join(home, b.portable)
	}
	if xdg := os.Getenv(b.xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{homeDir}, b.fallback...), AppName)...)
}

// ConfigDir holds config.yml / config.toml and an optional .env.
func ConfigDir() string {
	return configBase.dir()
}

// DataDir holds user data that is not regenerable.
func DataDir() string {
	return dataBase.dir()
}

// StateDir holds logs and other runtime state.
func StateDir() string {
	return stateBase.dir()
}

// CacheDir holds the fork cache database.
func CacheDir() string {
	return cacheBase.dir()
}

// LogDir returns the directory for log files.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// DefaultToolHome returns the clone root: $TOOL_HOME or ~/dev/github.com.
func DefaultToolHome() string {
	if v := os.Getenv(ToolHomeEnv); v != "" {
		return v
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("dev", "github.com")
	}
	return filepath.Join(homeDir, "dev", "github.com")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || (len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator)) {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}

// EnsureDirs creates the forksync directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), StateDir(), CacheDir(), LogDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
