package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Command execution errors
	ErrCodeCommandTimeout  ErrorCode = "COMMAND_TIMEOUT"
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeCommandFailed   ErrorCode = "COMMAND_FAILED"

	// Git errors
	ErrCodeGitNotInstalled ErrorCode = "GIT_NOT_INSTALLED"
	ErrCodeGitCloneFailed  ErrorCode = "GIT_CLONE_FAILED"
	ErrCodeGitDirty        ErrorCode = "GIT_DIRTY"
	ErrCodeGitNotRepo      ErrorCode = "GIT_NOT_REPO"

	// GitHub errors
	ErrCodeGitHubAuth         ErrorCode = "GITHUB_AUTH"
	ErrCodeGitHubMissingScope ErrorCode = "GITHUB_MISSING_SCOPE"
	ErrCodeGitHubRateLimit    ErrorCode = "GITHUB_RATE_LIMIT"
	ErrCodeGitHubAPI          ErrorCode = "GITHUB_API"
	ErrCodeFetchFailed        ErrorCode = "FETCH_FAILED"

	// Cache errors
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeCacheCorrupt     ErrorCode = "CACHE_CORRUPT"

	// General errors
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// ForkError represents a structured error with context
type ForkError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *ForkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ForkError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *ForkError) WithDetail(key string, value interface{}) *ForkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// DetailString returns a string detail, or "" if absent.
func (e *ForkError) DetailString(key string) string {
	if e.Details == nil {
		return ""
	}
	if s, ok := e.Details[key].(string); ok {
		return s
	}
	return ""
}

// ToJSON converts the error to JSON
func (e *ForkError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new ForkError
func New(code ErrorCode, message string) *ForkError {
	return &ForkError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a ForkError
func Wrap(err error, code ErrorCode, message string) *ForkError {
	return &ForkError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// As returns the outermost ForkError in err's chain.
func As(err error) (*ForkError, bool) {
	for err != nil {
		if fe, ok := err.(*ForkError); ok {
			return fe, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// Is checks if an error is a specific ForkError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	forkErr, ok := err.(*ForkError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	if forkErr.Code == code {
		return true
	}
	return Is(forkErr.Cause, code)
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if fe, ok := As(err); ok {
		return fe.Code
	}
	return ""
}
