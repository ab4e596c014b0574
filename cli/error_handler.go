package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/forksync/errors"
	"github.com/grovetools/forksync/tui/theme"
)

// ErrorHandler prints user-facing messages with a remediation hint where
// one is known.
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler writes to stderr.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{Verbose: verbose, Out: os.Stderr}
}

// Handle prints err and returns it unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	t := theme.Default()
	prefix := t.Error.Render(theme.Icons.Error)

	fmt.Fprintf(h.Out, "%s %v\n", prefix, err)
	if hint := Hint(err); hint != "" {
		fmt.Fprintf(h.Out, "%s\n", t.Muted.Render(hint))
	}

	if h.Verbose {
		if fe, ok := errors.As(err); ok {
			fmt.Fprintf(h.Out, "\nError details:\n%s\n", fe.ToJSON())
		}
	}
	return err
}

// Hint returns the remediation for an error code, or "".
func Hint(err error) string {
	fe, _ := errors.As(err)
	switch errors.GetCode(err) {
	case errors.ErrCodeCommandNotFound:
		name := ""
		if fe != nil {
			name = fe.DetailString("command")
		}
		if name == "git" {
			return "Install git and make sure it is on your PATH."
		}
		return "Install the GitHub CLI (https://cli.github.com) and make sure 'gh' is on your PATH."
	case errors.ErrCodeGitHubAuth:
		return "Run 'gh auth login' or set a valid token in the configured token_env."
	case errors.ErrCodeGitHubMissingScope:
		return "Run 'gh auth refresh -h github.com -s delete_repo' to grant the missing scope."
	case errors.ErrCodeGitHubRateLimit:
		return "GitHub rate limit reached. Try again later or use a token with a higher limit."
	case errors.ErrCodeFetchFailed:
		return "Check your network and 'gh auth status'. Cached forks are used when available."
	case errors.ErrCodeCacheUnavailable:
		return "Another forksync may be running. Close it or run 'forksync cache clear'."
	case errors.ErrCodeCacheCorrupt:
		return "Run 'forksync cache clear' to rebuild the cache."
	case errors.ErrCodeConfigNotFound:
		return "Run 'forksync config path' to see where the config file is expected."
	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		return "Run 'forksync config validate' for details and 'forksync config schema' for the schema."
	case errors.ErrCodeCommandTimeout:
		return "Increase the matching value under 'timeouts' in the config file."
	}
	return ""
}
