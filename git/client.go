// Package git provides typed version-control operations over a command.Invoker.
package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/forksync/command"
)

// StashMessage labels stashes created during reconciliation.
const StashMessage = "forksync auto-stash"

// Client runs git against local clones. Every method takes the clone path
// and returns an error carrying the captured output on non-zero exit.
type Client struct {
	inv     command.Invoker
	builder *command.SafeBuilder
}

// NewClient creates a Client that runs commands through inv.
func NewClient(inv command.Invoker) *Client {
	return &Client{inv: inv, builder: command.NewSafeBuilder()}
}

func (c *Client) run(ctx context.Context, path string, args ...string) (command.Result, error) {
	return command.RunChecked(ctx, c.inv, path, "git", args...)
}

// IsDirty reports whether the working tree has uncommitted changes,
// untracked files included.
func (c *Client) IsDirty(ctx context.Context, path string) (bool, error) {
	res, err := c.run(ctx, path, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// CurrentBranch returns the checked-out branch name.
func (c *Client) CurrentBranch(ctx context.Context, path string) (string, error) {
	res, err := c.run(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(res.Stdout)
	if branch == "" {
		return "", fmt.Errorf("empty branch name")
	}
	return branch, nil
}

// HasUnpushedCommits reports whether branch has commits missing from
// origin/<branch>.
func (c *Client) HasUnpushedCommits(ctx context.Context, path, branch string) (bool, error) {
	if err := c.builder.Validate("gitRef", branch); err != nil {
		return false, err
	}
	res, err := c.run(ctx, path, "log", "origin/"+branch+"..HEAD", "--oneline")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// Stash saves the working tree, untracked files included, into a named stash.
func (c *Client) Stash(ctx context.Context, path string) error {
	_, err := c.run(ctx, path, "stash", "push", "--include-untracked", "-m", StashMessage)
	return err
}

// StashPop restores the most recent stash.
func (c *Client) StashPop(ctx context.Context, path string) error {
	_, err := c.run(ctx, path, "stash", "pop")
	return err
}

// Checkout switches to branch.
func (c *Client) Checkout(ctx context.Context, path, branch string) error {
	if err := c.builder.Validate("gitRef", branch); err != nil {
		return err
	}
	_, err := c.run(ctx, path, "checkout", branch)
	return err
}

// PullFastForwardOnly pulls the tracked branch, refusing to merge.
func (c *Client) PullFastForwardOnly(ctx context.Context, path string) error {
	_, err := c.run(ctx, path, "pull", "--ff-only")
	return err
}

// Fetch fetches remote.
func (c *Client) Fetch(ctx context.Context, path, remote string) error {
	if err := c.builder.Validate("gitRef", remote); err != nil {
		return err
	}
	_, err := c.run(ctx, path, "fetch", remote)
	return err
}

// ResetHard moves the current branch and working tree to ref.
func (c *Client) ResetHard(ctx context.Context, path, ref string) error {
	if err := c.builder.Validate("gitRef", ref); err != nil {
		return err
	}
	_, err := c.run(ctx, path, "reset", "--hard", ref)
	return err
}

// StashCount returns the number of stash entries.
func (c *Client) StashCount(ctx context.Context, path string) (int, error) {
	res, err := c.run(ctx, path, "stash", "list")
	if err != nil {
		return 0, err
	}
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		return 0, nil
	}
	return len(strings.Split(out, "\n")), nil
}
