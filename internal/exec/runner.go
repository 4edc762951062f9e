// Package exec provides a testable command execution abstraction.
package exec

import (
	"context"
	"errors"
	"io"
	"os"
	osexec "os/exec"
)

// Runner defines the interface for executing external commands.
// Inject this instead of calling exec.Command directly.
type Runner interface {
	// RunAttached executes a command wired to the given streams and waits for it.
	RunAttached(ctx context.Context, stdio Stdio, name string, args ...string) error
}

// Stdio holds the streams handed to a child process.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Terminal returns the process's own streams.
func Terminal() Stdio {
	return Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// OSRunner implements Runner using os/exec. The child inherits the
// environment.
type OSRunner struct{}

// NewOSRunner creates a new OS-based command runner.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// RunAttached executes a command with the given stdio and waits for it.
func (r *OSRunner) RunAttached(ctx context.Context, stdio Stdio, name string, args ...string) error {
	cmd := osexec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	return cmd.Run()
}

// ExitCode returns the exit status carried by err and whether err came
// from a child that ran and exited non-zero.
func ExitCode(err error) (int, bool) {
	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

// MockRunner implements Runner for testing.
type MockRunner struct {
	// Calls records all command invocations
	Calls []MockCall

	// Responses maps command name to response
	Responses map[string]MockResponse
}

// MockCall records a single command invocation.
type MockCall struct {
	Name string
	Args []string
}

// MockResponse defines the response for a mocked command.
type MockResponse struct {
	Stdout []byte
	Err    error
}

// NewMockRunner creates a new mock runner.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Responses: make(map[string]MockResponse),
	}
}

// AddResponse sets the response for a command name.
func (m *MockRunner) AddResponse(name string, resp MockResponse) {
	m.Responses[name] = resp
}

func (m *MockRunner) RunAttached(ctx context.Context, stdio Stdio, name string, args ...string) error {
	m.Calls = append(m.Calls, MockCall{Name: name, Args: args})
	resp := m.Responses[name]
	if stdio.Out != nil && len(resp.Stdout) > 0 {
		stdio.Out.Write(resp.Stdout)
	}
	return resp.Err
}
