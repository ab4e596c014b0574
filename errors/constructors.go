package errors

import (
	"fmt"
	"strings"
	"time"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *ForkError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *ForkError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// CommandFailed creates an error for a command that ran but exited non-zero.
// The captured output is kept in Details so callers can classify it.
func CommandFailed(cmd string, exitCode int, stdout, stderr string) *ForkError {
	msg := fmt.Sprintf("command failed: %s", cmd)
	if first := firstLine(stderr); first != "" {
		msg = fmt.Sprintf("%s: %s", msg, first)
	}
	return New(ErrCodeCommandFailed, msg).
		WithDetail("command", cmd).
		WithDetail("exitCode", exitCode).
		WithDetail("stdout", stdout).
		WithDetail("stderr", stderr)
}

// CommandTimeout creates an error for a command killed at its deadline.
func CommandTimeout(cmd string, timeout time.Duration) *ForkError {
	return New(ErrCodeCommandTimeout, fmt.Sprintf("command timed out after %s: %s", timeout, cmd)).
		WithDetail("command", cmd).
		WithDetail("timeout", timeout.String())
}

// CommandNotFound creates an error for a binary missing from PATH.
func CommandNotFound(name string, err error) *ForkError {
	return Wrap(err, ErrCodeCommandNotFound, fmt.Sprintf("executable not found: %s", name)).
		WithDetail("command", name)
}

// MissingScope creates an error for a GitHub token lacking an OAuth scope.
func MissingScope(repo, scope string) *ForkError {
	return New(ErrCodeGitHubMissingScope, fmt.Sprintf("missing '%s' scope for %s", scope, repo)).
		WithDetail("repo", repo).
		WithDetail("scope", scope)
}

// FetchFailed wraps a failure to list forks from GitHub.
func FetchFailed(err error) *ForkError {
	return Wrap(err, ErrCodeFetchFailed, "failed to fetch forks from GitHub")
}

// CacheUnavailable wraps a failure to open the fork cache.
func CacheUnavailable(path string, err error) *ForkError {
	return Wrap(err, ErrCodeCacheUnavailable, "fork cache unavailable").
		WithDetail("path", path)
}

// Stderr returns the captured stderr of a failed command, if err carries one.
func Stderr(err error) string {
	if fe, ok := As(err); ok {
		return fe.DetailString("stderr")
	}
	return ""
}

// Stdout returns the captured stdout of a failed command, if err carries one.
func Stdout(err error) string {
	if fe, ok := As(err); ok {
		return fe.DetailString("stdout")
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
