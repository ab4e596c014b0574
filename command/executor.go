package command

import (
	"context"
	"os"
	"os/exec"
)

// Executor creates exec.Cmd instances. Tests swap it to point commands at
// stub binaries without touching the code that builds them.
type Executor interface {
	// Command creates a new exec.Cmd instance for the given command and arguments.
	Command(name string, args ...string) *exec.Cmd

	// CommandContext creates a new context-aware exec.Cmd instance.
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
}

// RealExecutor is the production Executor. Background workers have no
// terminal to answer prompts on, so git and gh are told never to ask.
type RealExecutor struct {
	// Env is appended to the inherited environment.
	Env []string
}

// NonInteractiveEnv disables credential and confirmation prompts.
var NonInteractiveEnv = []string{
	"GIT_TERMINAL_PROMPT=0",
	"GH_PROMPT_DISABLED=1",
	"GH_NO_UPDATE_NOTIFIER=1",
}

// NewNonInteractiveExecutor returns a RealExecutor that suppresses prompts.
func NewNonInteractiveExecutor() *RealExecutor {
	return &RealExecutor{Env: NonInteractiveEnv}
}

// Command creates a standard exec.Cmd.
func (e *RealExecutor) Command(name string, args ...string) *exec.Cmd {
	cmd := exec.Command(name, args...)
	e.applyEnv(cmd)
	return cmd
}

// CommandContext creates a standard context-aware exec.Cmd.
func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	e.applyEnv(cmd)
	return cmd
}

func (e *RealExecutor) applyEnv(cmd *exec.Cmd) {
	if len(e.Env) == 0 {
		return
	}
	cmd.Env = append(os.Environ(), e.Env...)
}
