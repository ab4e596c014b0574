package command

import (
	"context"
	"strings"

	"github.com/grovetools/forksync/errors"
)

// Result is the captured outcome of a process that ran to completion.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the process exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Err converts a non-zero result into a COMMAND_FAILED error that keeps the
// captured output. It returns nil for a successful result.
func (r Result) Err(name string, args ...string) error {
	if r.Success() {
		return nil
	}
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	return errors.CommandFailed(line, r.ExitCode, r.Stdout, r.Stderr)
}

// Invoker runs an external program and reports its outcome. Implementations
// must bound every call with a timeout.
type Invoker interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// RunChecked runs a command and folds a non-zero exit into the returned error.
func RunChecked(ctx context.Context, inv Invoker, dir, name string, args ...string) (Result, error) {
	res, err := inv.Run(ctx, dir, name, args...)
	if err != nil {
		return res, err
	}
	return res, res.Err(name, args...)
}
