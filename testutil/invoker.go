package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/grovetools/forksync/command"
)

// Call is one recorded invocation.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Handler computes the response to a matched call.
type Handler func(Call) (command.Result, error)

type rule struct {
	prefix  string
	handler Handler
}

// FakeInvoker is a command.Invoker that records calls and answers them from
// prefix rules. The most recently registered matching rule wins; unmatched
// calls succeed with empty output.
type FakeInvoker struct {
	mu    sync.Mutex
	calls []Call
	rules []rule
}

// NewFakeInvoker creates an empty FakeInvoker.
func NewFakeInvoker() *FakeInvoker {
	return &FakeInvoker{}
}

// On answers calls whose command line starts with prefix.
func (f *FakeInvoker) On(prefix string, res command.Result) *FakeInvoker {
	return f.OnFunc(prefix, func(Call) (command.Result, error) { return res, nil })
}

// OnStdout answers matching calls with a successful result carrying stdout.
func (f *FakeInvoker) OnStdout(prefix, stdout string) *FakeInvoker {
	return f.On(prefix, command.Result{Stdout: stdout})
}

// OnFailure answers matching calls with a non-zero exit and stderr.
func (f *FakeInvoker) OnFailure(prefix, stderr string) *FakeInvoker {
	return f.On(prefix, command.Result{Stderr: stderr, ExitCode: 1})
}

// OnError answers matching calls with an invocation error.
func (f *FakeInvoker) OnError(prefix string, err error) *FakeInvoker {
	return f.OnFunc(prefix, func(Call) (command.Result, error) { return command.Result{ExitCode: -1}, err })
}

// OnFunc registers a handler for matching calls.
func (f *FakeInvoker) OnFunc(prefix string, h Handler) *FakeInvoker {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{prefix: prefix, handler: h})
	return f
}

// Run records the call and returns the matching rule's response.
func (f *FakeInvoker) Run(_ context.Context, dir, name string, args ...string) (command.Result, error) {
	call := Call{Dir: dir, Name: name, Args: append([]string(nil), args...)}
	line := call.String()

	f.mu.Lock()
	f.calls = append(f.calls, call)
	var handler Handler
	for i := len(f.rules) - 1; i >= 0; i-- {
		if strings.HasPrefix(line, f.rules[i].prefix) {
			handler = f.rules[i].handler
			break
		}
	}
	f.mu.Unlock()

	if handler == nil {
		return command.Result{}, nil
	}
	return handler(call)
}

// Calls returns a copy of all recorded calls.
func (f *FakeInvoker) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Lines returns all recorded calls rendered as command lines.
func (f *FakeInvoker) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Called reports whether any recorded call starts with prefix.
func (f *FakeInvoker) Called(prefix string) bool {
	for _, line := range f.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Count returns how many recorded calls start with prefix.
func (f *FakeInvoker) Count(prefix string) int {
	n := 0
	for _, line := range f.Lines() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}
