package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/forksync/errors"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFromBytes(nil, FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, DefaultDryRunDelay, cfg.DryRunDelay)
	assert.Equal(t, DefaultBatchPause, cfg.BatchPause)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, DefaultStaleAfter, cfg.StaleAfter)
	assert.Equal(t, DefaultCloneTimeout, cfg.Timeouts.Clone)
	assert.True(t, cfg.AutoRefresh)
	assert.True(t, cfg.GitHub.UseAPI)
	assert.Equal(t, DefaultAPIURL, cfg.GitHub.APIURL)
	assert.Equal(t, "kanagawa", cfg.Theme)
	assert.Empty(t, cfg.ToolHome)
}

func TestLoadYAML(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
tool_home: /srv/forks
dry_run_delay: 10ms
batch_pause: 0s
auto_refresh: false
timeouts:
  clone: 30m
exclude:
  - alice/legacy-*
  - archive-bot
github:
  use_api: false
theme: terminal
`), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "/srv/forks", cfg.ToolHome)
	assert.Equal(t, 10*time.Millisecond, cfg.DryRunDelay)
	assert.Equal(t, time.Duration(0), cfg.BatchPause)
	assert.False(t, cfg.AutoRefresh)
	assert.Equal(t, 30*time.Minute, cfg.Timeouts.Clone)
	assert.Equal(t, DefaultCommandTimeout, cfg.Timeouts.Command, "unset keys keep defaults")
	assert.Equal(t, []string{"alice/legacy-*", "archive-bot"}, cfg.Exclude)
	assert.False(t, cfg.GitHub.UseAPI)
	assert.Equal(t, DefaultTokenEnv, cfg.GitHub.TokenEnv)
	assert.Equal(t, "terminal", cfg.Theme)
}

func TestLoadTOML(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
tool_home = "/srv/forks"
stale_after = "12h"
exclude = ["bob/*"]

[timeouts]
api = "5s"

[github]
api_url = "https://ghe.example.com/api/v3"
`), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, cfg.StaleAfter)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.API)
	assert.Equal(t, []string{"bob/*"}, cfg.Exclude)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.GitHub.APIURL)
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("FORKS_ROOT", "/data/forks")
	t.Setenv("FORKS_EMPTY", "")

	cfg, err := LoadFromBytes([]byte(`
tool_home: ${FORKS_ROOT}
theme: ${FORKS_EMPTY:-gruvbox}
`), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "/data/forks", cfg.ToolHome)
	assert.Equal(t, "gruvbox", cfg.Theme)
}

func TestToolHomeTildeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadFromBytes([]byte("tool_home: ~/src\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "src"), cfg.ToolHome)
}

func TestInvalidConfigs(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode errors.ErrorCode
	}{
		{"malformed yaml", "tool_home: [unclosed", errors.ErrCodeConfigInvalid},
		{"bad duration", "batch_pause: soon", errors.ErrCodeConfigValidation},
		{"wrong type", "auto_refresh: sometimes", errors.ErrCodeConfigValidation},
		{"unknown nested key", "timeouts:\n  forever: 1h", errors.ErrCodeConfigValidation},
		{"unknown theme", "theme: neon", errors.ErrCodeConfigValidation},
		{"zero poll interval", "poll_interval: 0s", errors.ErrCodeConfigValidation},
		{"relative tool home", "tool_home: src/forks", errors.ErrCodeConfigValidation},
		{"bad api url", "github:\n  api_url: ftp://example.com", errors.ErrCodeConfigValidation},
		{"bad exclude pattern", "exclude: ['[unterminated']", errors.ErrCodeConfigValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.content), FormatYAML)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestExtensions(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
theme: kanagawa
logging:
  level: debug
  report_caller: true
  file:
    enabled: true
    path: /tmp/forksync.log
`), FormatYAML)
	require.NoError(t, err)

	require.Contains(t, cfg.Extensions, "logging")

	type fileSink struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	}
	type logConfig struct {
		Level        string   `yaml:"level"`
		ReportCaller bool     `yaml:"report_caller"`
		File         fileSink `yaml:"file"`
	}

	var logCfg logConfig
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)
	assert.True(t, logCfg.ReportCaller)
	assert.Equal(t, "/tmp/forksync.log", logCfg.File.Path)

	var missing logConfig
	require.NoError(t, cfg.UnmarshalExtension("absent", &missing))
	assert.Empty(t, missing.Level)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`batch_pause = "1s"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.BatchPause)
	assert.Equal(t, path, cfg.Source)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Equal(t, errors.ErrCodeConfigNotFound, errors.GetCode(err))

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("theme: neon"), 0o644))
	_, err = Load(bad)
	fe, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, bad, fe.DetailString("path"))
}

func TestLoadDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("FORKSYNC_HOME", home)
	t.Setenv(ConfigEnv, "")
	t.Chdir(t.TempDir())

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Empty(t, cfg.Source, "no file means defaults")

	configDir := filepath.Join(home, "config")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte("tool_home: ${FORKSYNC_TEST_ROOT}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, ".env"), []byte("FORKSYNC_TEST_ROOT=/from/dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FORKSYNC_TEST_ROOT") })

	cfg, err = LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv", cfg.ToolHome)
	assert.Equal(t, filepath.Join(configDir, "config.yml"), cfg.Source)

	explicit := filepath.Join(home, "other.yml")
	require.NoError(t, os.WriteFile(explicit, []byte("theme: gruvbox\n"), 0o644))
	t.Setenv(ConfigEnv, explicit)
	cfg, err = LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, "gruvbox", cfg.Theme)
}

func TestLoadEnvFilesDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FORKSYNC_KEEP=file\nFORKSYNC_NEW=file\n"), 0o644))
	t.Setenv("FORKSYNC_KEEP", "env")
	t.Cleanup(func() { os.Unsetenv("FORKSYNC_NEW") })

	loaded := LoadEnvFiles(dir, dir, "", t.TempDir())
	assert.Equal(t, []string{filepath.Join(dir, ".env")}, loaded)
	assert.Equal(t, "env", os.Getenv("FORKSYNC_KEEP"))
	assert.Equal(t, "file", os.Getenv("FORKSYNC_NEW"))
}

func TestGitHubToken(t *testing.T) {
	cfg := Default()
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")
	assert.Empty(t, cfg.GitHubToken())

	t.Setenv("GH_TOKEN", "gh-token")
	assert.Equal(t, "gh-token", cfg.GitHubToken())

	t.Setenv("GITHUB_TOKEN", "primary")
	assert.Equal(t, "primary", cfg.GitHubToken())

	cfg.GitHub.UseAPI = false
	assert.Empty(t, cfg.GitHubToken())
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.ToolHome = "/srv/forks"
	cfg.Exclude = []string{"alice/*"}
	cfg.Extensions = map[string]interface{}{"logging": map[string]interface{}{"level": "warn"}}

	for _, format := range []Format{FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := cfg.Marshal(format)
			require.NoError(t, err)

			back, err := LoadFromBytes(data, format)
			require.NoError(t, err)
			assert.Equal(t, cfg.ToolHome, back.ToolHome)
			assert.Equal(t, cfg.Timeouts, back.Timeouts)
			assert.Equal(t, cfg.Exclude, back.Exclude)
			assert.Contains(t, back.Extensions, "logging")
		})
	}
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	props, ok := doc["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"tool_home", "batch_pause", "timeouts", "exclude", "github", "theme"} {
		assert.Contains(t, props, key)
	}
	assert.Equal(t, true, doc["additionalProperties"])
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatFromPath("/x/config.TOML"))
	assert.Equal(t, FormatYAML, FormatFromPath("/x/config.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("config"))
}
