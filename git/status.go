package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// StatusInfo contains detailed git status information for a repository
type StatusInfo struct {
	// Branch is the current branch name
	Branch string `json:"branch"`

	AheadCount  int `json:"ahead_count"`
	BehindCount int `json:"behind_count"`

	ModifiedCount  int `json:"modified_count"`
	UntrackedCount int `json:"untracked_count"`
	StagedCount    int `json:"staged_count"`

	// IsDirty indicates if there are any uncommitted changes
	IsDirty bool `json:"is_dirty"`

	// HasUpstream indicates if the branch has an upstream tracking branch
	HasUpstream bool `json:"has_upstream"`
}

// Status returns detailed status for the clone at path.
func (c *Client) Status(ctx context.Context, path string) (*StatusInfo, error) {
	res, err := c.inv.Run(ctx, path, "git", "status", "--porcelain=v2", "--branch")
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		if strings.Contains(res.Stderr, "not a git repository") {
			return nil, fmt.Errorf("not a git repository: %s", path)
		}
		return nil, res.Err("git", "status", "--porcelain=v2", "--branch")
	}
	return ParseStatus(res.Stdout), nil
}

// ParseStatus parses `git status --porcelain=v2 --branch` output.
func ParseStatus(output string) *StatusInfo {
	status := &StatusInfo{}

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}

		// Header lines start with '#'
		if strings.HasPrefix(line, "# ") {
			parts := strings.Fields(line)
			if len(parts) < 3 {
				continue
			}
			switch parts[1] {
			case "branch.head":
				status.Branch = parts[2]
			case "branch.upstream":
				status.HasUpstream = true
			case "branch.ab":
				// +<ahead> -<behind>
				status.AheadCount, _ = strconv.Atoi(strings.TrimPrefix(parts[2], "+"))
				if len(parts) > 3 {
					status.BehindCount, _ = strconv.Atoi(strings.TrimPrefix(parts[3], "-"))
				}
			}
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case "?":
			status.UntrackedCount++
		case "1", "2":
			if len(parts) < 2 || len(parts[1]) < 2 {
				continue
			}
			xy := parts[1]
			if xy[0] != '.' {
				status.StagedCount++
			}
			if xy[1] != '.' {
				status.ModifiedCount++
			}
		case "u", "U":
			status.StagedCount++
			status.ModifiedCount++
		}
	}

	status.IsDirty = status.ModifiedCount > 0 || status.UntrackedCount > 0 || status.StagedCount > 0
	return status
}
