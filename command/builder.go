package command

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/grovetools/forksync/errors"
)

const (
	// DefaultTimeout is the default command execution timeout
	DefaultTimeout = 2 * time.Minute

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 30 * time.Minute
)

var (
	gitRefPattern = regexp.MustCompile(`^[a-zA-Z0-9/_.-]+$`)
	ownerPattern  = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?$`)
	repoPattern   = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// SafeBuilder provides secure command execution with validation
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

// WithDefaultTimeout changes the timeout applied to commands whose context
// has no deadline of its own.
func (sb *SafeBuilder) WithDefaultTimeout(timeout time.Duration) *SafeBuilder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	sb.defaultTimeout = timeout
	return sb
}

// makeDefaultValidators returns the default set of validators
func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"fileName": validateFileName,
		"gitRef":   validateGitRef,
		"owner":    validateOwner,
		"repoSlug": validateRepoSlug,
	}
}

// validateFileName ensures file paths are safe
func validateFileName(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	// Prevent directory traversal
	if strings.Contains(path, "..") {
		return fmt.Errorf("file path cannot contain '..'")
	}

	// Prevent command injection via shell metacharacters
	if strings.ContainsAny(path, ";|&$`") {
		return fmt.Errorf("file path contains invalid characters")
	}

	return nil
}

// validateGitRef ensures git references are safe
func validateGitRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("git ref cannot be empty")
	}
	if strings.HasPrefix(ref, "-") {
		return fmt.Errorf("git ref cannot start with '-': %s", ref)
	}

	if !gitRefPattern.MatchString(ref) {
		return fmt.Errorf("invalid git ref: %s", ref)
	}

	return nil
}

// validateOwner checks a GitHub user or organization login.
func validateOwner(owner string) error {
	if owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if len(owner) > 39 || !ownerPattern.MatchString(owner) {
		return fmt.Errorf("invalid owner: %s", owner)
	}
	return nil
}

// validateRepoSlug checks an "owner/name" repository reference.
func validateRepoSlug(slug string) error {
	owner, name, ok := strings.Cut(slug, "/")
	if !ok {
		return fmt.Errorf("repository must be owner/name: %s", slug)
	}
	if err := validateOwner(owner); err != nil {
		return err
	}
	if name == "" || name == "." || name == ".." || !repoPattern.MatchString(name) {
		return fmt.Errorf("invalid repository name: %s", slug)
	}
	return nil
}

// Command represents a safe command configuration
type Command struct {
	ctx      context.Context
	cancel   context.CancelFunc
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command with validation. The builder's default timeout
// is applied only when ctx has no deadline of its own.
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	// Validate command name
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}

	timeout := sb.defaultTimeout
	var cancel context.CancelFunc
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		ctx, cancel = context.WithCancel(ctx)
	} else {
		ctx, cancel = context.WithTimeout(ctx, sb.defaultTimeout)
	}

	return &Command{
		ctx:      ctx,
		cancel:   cancel,
		name:     name,
		args:     args,
		timeout:  timeout,
		executor: sb.executor,
	}, nil
}

// WithTimeout narrows the command's timeout.
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	if timeout >= c.timeout {
		return c
	}

	ctx, cancel := context.WithTimeout(c.ctx, timeout)
	parentCancel := c.cancel
	c.ctx = ctx
	c.cancel = func() {
		cancel()
		parentCancel()
	}
	c.timeout = timeout
	return c
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// String renders the command line for logs and error messages.
func (c *Command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// Exec creates and returns an exec.Cmd. The caller must call Release once the
// process has finished.
func (c *Command) Exec() *exec.Cmd {
	return c.executor.CommandContext(c.ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
}

// Release frees the timeout context held by the command.
func (c *Command) Release() {
	if c.cancel != nil {
		c.cancel()
	}
}

// Run executes the command in dir and captures its output. A non-zero exit is
// reported through Result.ExitCode with a nil error; only failures to run the
// process at all (missing binary, deadline) return an error.
func (c *Command) Run(dir string) (Result, error) {
	defer c.Release()

	execCmd := c.Exec()
	execCmd.Dir = dir
	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if stderrors.Is(c.ctx.Err(), context.DeadlineExceeded) {
		res.ExitCode = -1
		return res, errors.CommandTimeout(c.String(), c.timeout)
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if stderrors.Is(err, exec.ErrNotFound) {
		return res, errors.CommandNotFound(c.name, err)
	}
	return res, errors.Wrap(err, errors.ErrCodeCommandFailed, fmt.Sprintf("failed to start: %s", c.String()))
}

// Run builds and executes a command, satisfying Invoker.
func (sb *SafeBuilder) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd, err := sb.Build(ctx, name, args...)
	if err != nil {
		return Result{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to build command")
	}
	return cmd.Run(dir)
}
