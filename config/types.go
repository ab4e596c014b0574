package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Defaults applied before any file, env or flag value.
const (
	DefaultDryRunDelay    = 500 * time.Millisecond
	DefaultBatchPause     = 100 * time.Millisecond
	DefaultPollInterval   = 50 * time.Millisecond
	DefaultStaleAfter     = 24 * time.Hour
	DefaultCommandTimeout = 2 * time.Minute
	DefaultCloneTimeout   = 10 * time.Minute
	DefaultAPITimeout     = 30 * time.Second
	DefaultAPIURL         = "https://api.github.com"
	DefaultTokenEnv       = "GITHUB_TOKEN"
	DefaultTheme          = "kanagawa"
)

// Themes lists the accepted values for the theme key.
var Themes = []string{"kanagawa", "gruvbox", "terminal"}

// TimeoutsConfig bounds each class of external process.
type TimeoutsConfig struct {
	Command time.Duration `yaml:"command" toml:"command" mapstructure:"command"`
	Clone   time.Duration `yaml:"clone" toml:"clone" mapstructure:"clone"`
	API     time.Duration `yaml:"api" toml:"api" mapstructure:"api"`
}

// GitHubConfig controls how forksync talks to GitHub beyond the gh CLI.
type GitHubConfig struct {
	// APIURL is the REST base URL, for GitHub Enterprise installs.
	APIURL string `yaml:"api_url" toml:"api_url" mapstructure:"api_url"`
	// TokenEnv names the environment variable holding a token for the
	// REST client. GH_TOKEN is consulted when it is unset.
	TokenEnv string `yaml:"token_env" toml:"token_env" mapstructure:"token_env"`
	// UseAPI enables the REST client for commits-behind lookups when a
	// token is available.
	UseAPI bool `yaml:"use_api" toml:"use_api" mapstructure:"use_api"`
}

// Config is the forksync configuration.
type Config struct {
	ToolHome     string         `yaml:"tool_home" toml:"tool_home" mapstructure:"tool_home"`
	DryRunDelay  time.Duration  `yaml:"dry_run_delay" toml:"dry_run_delay" mapstructure:"dry_run_delay"`
	BatchPause   time.Duration  `yaml:"batch_pause" toml:"batch_pause" mapstructure:"batch_pause"`
	PollInterval time.Duration  `yaml:"poll_interval" toml:"poll_interval" mapstructure:"poll_interval"`
	StaleAfter   time.Duration  `yaml:"stale_after" toml:"stale_after" mapstructure:"stale_after"`
	AutoRefresh  bool           `yaml:"auto_refresh" toml:"auto_refresh" mapstructure:"auto_refresh"`
	Timeouts     TimeoutsConfig `yaml:"timeouts" toml:"timeouts" mapstructure:"timeouts"`
	Exclude      []string       `yaml:"exclude,omitempty" toml:"exclude,omitempty" mapstructure:"exclude"`
	GitHub       GitHubConfig   `yaml:"github" toml:"github" mapstructure:"github"`
	Theme        string         `yaml:"theme" toml:"theme" mapstructure:"theme"`

	// Extensions captures all other top-level keys, such as "logging".
	Extensions map[string]interface{} `yaml:",inline" toml:"-" mapstructure:",remain"`

	// Source is the file the configuration was read from, if any.
	Source string `yaml:"-" toml:"-" mapstructure:"-"`
}

// Default returns a Config with every default applied. ToolHome is left
// empty and resolved by the caller so flag and env precedence stay in one
// place.
func Default() *Config {
	return &Config{
		DryRunDelay:  DefaultDryRunDelay,
		BatchPause:   DefaultBatchPause,
		PollInterval: DefaultPollInterval,
		StaleAfter:   DefaultStaleAfter,
		AutoRefresh:  true,
		Timeouts: TimeoutsConfig{
			Command: DefaultCommandTimeout,
			Clone:   DefaultCloneTimeout,
			API:     DefaultAPITimeout,
		},
		GitHub: GitHubConfig{
			APIURL:   DefaultAPIURL,
			TokenEnv: DefaultTokenEnv,
			UseAPI:   true,
		},
		Theme: DefaultTheme,
	}
}

// GitHubToken returns the token for the REST client, or "" when the API
// is disabled or no token is set.
func (c *Config) GitHubToken() string {
	if !c.GitHub.UseAPI {
		return ""
	}
	if c.GitHub.TokenEnv != "" {
		if v := os.Getenv(c.GitHub.TokenEnv); v != "" {
			return v
		}
	}
	return os.Getenv("GH_TOKEN")
}

// Document returns the configuration shaped like the config file, with
// durations rendered as strings. Extensions are merged back in.
func (c *Config) Document() map[string]interface{} {
	doc := map[string]interface{}{
		"tool_home":     c.ToolHome,
		"dry_run_delay": c.DryRunDelay.String(),
		"batch_pause":   c.BatchPause.String(),
		"poll_interval": c.PollInterval.String(),
		"stale_after":   c.StaleAfter.String(),
		"auto_refresh":  c.AutoRefresh,
		"timeouts": map[string]interface{}{
			"command": c.Timeouts.Command.String(),
			"clone":   c.Timeouts.Clone.String(),
			"api":     c.Timeouts.API.String(),
		},
		"github": map[string]interface{}{
			"api_url":   c.GitHub.APIURL,
			"token_env": c.GitHub.TokenEnv,
			"use_api":   c.GitHub.UseAPI,
		},
		"theme": c.Theme,
	}
	if len(c.Exclude) > 0 {
		doc["exclude"] = append([]string(nil), c.Exclude...)
	}
	for k, v := range c.Extensions {
		if _, taken := doc[k]; !taken {
			doc[k] = v
		}
	}
	return doc
}

// UnmarshalExtension decodes a specific extension's configuration into
// the provided target struct. The target must be a pointer. A missing key
// leaves the target untouched.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
