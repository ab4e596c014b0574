// Package github wraps the gh CLI and the GitHub REST API for fork operations.
package github

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/forksync/command"
	"github.com/grovetools/forksync/errors"
	"github.com/grovetools/forksync/logging"
	"github.com/grovetools/forksync/pkg/models"
)

// Timeouts bounds each class of gh invocation.
type Timeouts struct {
	Command time.Duration
	Clone   time.Duration
	API     time.Duration
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{Command: 2 * time.Minute, Clone: 10 * time.Minute, API: 30 * time.Second}
}

// BehindCounter reports how many commits a fork's default branch is behind
// its parent's.
type BehindCounter interface {
	CommitsBehind(ctx context.Context, fork models.Fork) (int, error)
}

// Client runs gh for remote fork operations.
type Client struct {
	inv      command.Invoker
	builder  *command.SafeBuilder
	timeouts Timeouts
	api      BehindCounter
	log      *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithTimeouts overrides the per-operation timeouts.
func WithTimeouts(t Timeouts) Option {
	return func(c *Client) { c.timeouts = t }
}

// WithAPI makes CommitsBehind try the REST API before shelling out to gh.
func WithAPI(api BehindCounter) Option {
	return func(c *Client) { c.api = api }
}

// NewClient creates a Client that runs gh through inv.
func NewClient(inv command.Invoker, opts ...Option) *Client {
	c := &Client{
		inv:      inv,
		builder:  command.NewSafeBuilder(),
		timeouts: DefaultTimeouts(),
		log:      logging.NewLogger("github"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) gh(ctx context.Context, timeout time.Duration, dir string, args ...string) (command.Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return command.RunChecked(ctx, c.inv, dir, "gh", args...)
}

func (c *Client) validate(fork models.Fork) error {
	if err := c.builder.Validate("repoSlug", fork.Key()); err != nil {
		return err
	}
	if fork.DefaultBranch != "" {
		return c.builder.Validate("gitRef", fork.DefaultBranch)
	}
	return nil
}

// Sync fast-forwards the fork's default branch from its parent on GitHub.
func (c *Client) Sync(ctx context.Context, fork models.Fork) error {
	if err := c.validate(fork); err != nil {
		return err
	}
	_, err := c.gh(ctx, c.timeouts.Command, "",
		"repo", "sync", fork.Key(),
		"--source", fork.ParentFullName(),
		"--branch", fork.DefaultBranch)
	return err
}

// Clone clones the fork into dest.
func (c *Client) Clone(ctx context.Context, fork models.Fork, dest string) error {
	if err := c.validate(fork); err != nil {
		return err
	}
	_, err := c.gh(ctx, c.timeouts.Clone, "", "repo", "clone", fork.Key(), dest)
	return err
}

// Archive archives the fork on GitHub.
func (c *Client) Archive(ctx context.Context, fork models.Fork) error {
	if err := c.validate(fork); err != nil {
		return err
	}
	_, err := c.gh(ctx, c.timeouts.Command, "", "repo", "archive", fork.Key(), "--yes")
	return err
}

// Delete deletes the fork on GitHub. A missing delete_repo scope is
// reported as GITHUB_MISSING_SCOPE with the original stderr attached.
func (c *Client) Delete(ctx context.Context, fork models.Fork) error {
	if err := c.validate(fork); err != nil {
		return err
	}
	_, err := c.gh(ctx, c.timeouts.Command, "", "repo", "delete", fork.Key(), "--yes")
	if err != nil && IsMissingDeleteScope(errors.Stderr(err)) {
		return errors.MissingScope(fork.Key(), "delete_repo").
			WithDetail("stderr", errors.Stderr(err))
	}
	return err
}

// IsMissingDeleteScope reports whether gh stderr indicates the token lacks
// the delete_repo scope.
func IsMissingDeleteScope(stderr string) bool {
	return strings.Contains(stderr, "delete_repo") && strings.Contains(stderr, "scope")
}

// Browse opens the fork in the user's browser.
func (c *Client) Browse(ctx context.Context, fork models.Fork) error {
	if err := c.validate(fork); err != nil {
		return err
	}
	_, err := c.gh(ctx, c.timeouts.Command, "", "browse", "--repo", fork.Key())
	return err
}

// CommitsBehind returns how many commits the fork's default branch is behind
// the parent's branch of the same name.
func (c *Client) CommitsBehind(ctx context.Context, fork models.Fork) (int, error) {
	if err := c.validate(fork); err != nil {
		return 0, err
	}

	if c.api != nil {
		n, err := c.api.CommitsBehind(ctx, fork)
		if err == nil {
			return n, nil
		}
		c.log.WithError(err).WithField("fork", fork.Key()).Debug("API compare failed, falling back to gh")
	}

	res, err := c.gh(ctx, c.timeouts.API, "", "api", CompareEndpoint(fork), "--jq", ".behind_by")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(res.Stdout))
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeGitHubAPI, "unexpected behind_by value")
	}
	return n, nil
}

// CompareEndpoint is the REST path comparing the fork's default branch with
// the parent's.
func CompareEndpoint(fork models.Fork) string {
	return "repos/" + fork.Key() + "/compare/" + fork.DefaultBranch + "..." + fork.ParentOwner + ":" + fork.DefaultBranch
}

// CheckInstalled verifies gh is available and authenticated.
func (c *Client) CheckInstalled(ctx context.Context) error {
	_, err := c.gh(ctx, c.timeouts.API, "", "auth", "status")
	if err != nil && !errors.Is(err, errors.ErrCodeCommandNotFound) {
		return errors.Wrap(err, errors.ErrCodeGitHubAuth, "gh is not authenticated")
	}
	return err
}
