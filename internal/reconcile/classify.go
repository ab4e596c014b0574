package reconcile

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/grovetools/forksync/errors"
	"github.com/grovetools/forksync/github"
)

// MaxReasonLength bounds failure reasons shown in the status column.
const MaxReasonLength = 30

// Fixed failure reasons.
const (
	ReasonTimedOut        = "timed out"
	ReasonUnpushedCommits = "unpushed commits"
	ReasonGetBranch       = "get branch failed"
	ReasonStash           = "stash failed"
	ReasonCheckout        = "checkout failed"
	ReasonSync            = "sync failed"
)

// Truncate reduces a message to its first non-empty line and bounds its length.
func Truncate(msg string) string {
	cleaned := strings.TrimSpace(msg)
	if i := strings.IndexByte(cleaned, '\n'); i >= 0 {
		cleaned = strings.TrimSpace(cleaned[:i])
	}
	runes := []rune(cleaned)
	if len(runes) > MaxReasonLength {
		return string(runes[:MaxReasonLength-3]) + "..."
	}
	return cleaned
}

// IsTimeout reports whether err came from a bounded invocation running out of time.
func IsTimeout(err error) bool {
	return errors.Is(err, errors.ErrCodeCommandTimeout) || stderrors.Is(err, context.DeadlineExceeded)
}

// Describe turns an error into a display reason, preferring the captured
// stderr of a failed command over the wrapper message.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if IsTimeout(err) {
		return ReasonTimedOut
	}
	if stderr := strings.TrimSpace(errors.Stderr(err)); stderr != "" {
		return Truncate(stderr)
	}
	return Truncate(err.Error())
}

// reasonOr returns fixed unless err is a timeout.
func reasonOr(err error, fixed string) string {
	if IsTimeout(err) {
		return ReasonTimedOut
	}
	return fixed
}

// prefixed builds "<prefix>: <err>" and truncates it.
func prefixed(prefix string, err error) string {
	if IsTimeout(err) {
		return ReasonTimedOut
	}
	return Truncate(fmt.Sprintf("%s: %v", prefix, err))
}

// IsMissingScope reports whether a delete failed for lack of the
// delete_repo token scope.
func IsMissingScope(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, errors.ErrCodeGitHubMissingScope) || github.IsMissingDeleteScope(errors.Stderr(err))
}

// isAlreadyUpToDate reports whether a failed remote sync actually left the
// fork current.
func isAlreadyUpToDate(err error) bool {
	return strings.Contains(errors.Stderr(err), "already up-to-date") ||
		strings.TrimSpace(errors.Stdout(err)) != ""
}
