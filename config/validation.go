package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/moby/patternmatcher"

	"github.com/grovetools/forksync/errors"
)

// Validate checks values the schema cannot express.
func (c *Config) Validate() error {
	durations := []struct {
		name  string
		value time.Duration
		min   time.Duration
	}{
		{"dry_run_delay", c.DryRunDelay, 0},
		{"batch_pause", c.BatchPause, 0},
		{"poll_interval", c.PollInterval, time.Millisecond},
		{"stale_after", c.StaleAfter, time.Second},
		{"timeouts.command", c.Timeouts.Command, time.Second},
		{"timeouts.clone", c.Timeouts.Clone, time.Second},
		{"timeouts.api", c.Timeouts.API, time.Second},
	}
	for _, d := range durations {
		if d.value < d.min {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("%s must be at least %s", d.name, d.min)).
				WithDetail("field", d.name).
				WithDetail("value", d.value.String())
		}
	}

	if c.ToolHome != "" && !filepath.IsAbs(c.ToolHome) {
		return errors.New(errors.ErrCodeConfigValidation, "tool_home must be an absolute path").
			WithDetail("tool_home", c.ToolHome)
	}

	if len(c.Exclude) > 0 {
		if _, err := patternmatcher.New(c.Exclude); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid exclude pattern")
		}
	}

	if c.GitHub.APIURL != "" {
		u, err := url.Parse(c.GitHub.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New(errors.ErrCodeConfigValidation, "github.api_url must be an http(s) URL").
				WithDetail("api_url", c.GitHub.APIURL)
		}
	}

	if !validTheme(c.Theme) {
		return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("unknown theme %q", c.Theme)).
			WithDetail("theme", c.Theme)
	}
	return nil
}

func validTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}
