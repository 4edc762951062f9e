package exec

import (
	"context"
	"runtime"
)

// Shell runs command text through the user's shell.
type Shell struct {
	runner Runner
	stdio  Stdio
	path   string
	flag   string
}

// NewShell picks the shell to use. shellEnv is the value of $SHELL (or
// %ComSpec% on Windows); empty falls back to /bin/sh or cmd.exe.
func NewShell(runner Runner, stdio Stdio, shellEnv string) *Shell {
	s := &Shell{runner: runner, stdio: stdio, path: shellEnv, flag: "-c"}
	if runtime.GOOS == "windows" {
		s.flag = "/C"
		if s.path == "" {
			s.path = "cmd.exe"
		}
		return s
	}
	if s.path == "" {
		s.path = "/bin/sh"
	}
	return s
}

// Path returns the shell binary.
func (s *Shell) Path() string { return s.path }

// Execute runs command verbatim. The child's exit status is reported as
// an *exec.ExitError; see ExitCode.
func (s *Shell) Execute(ctx context.Context, command string) error {
	return s.runner.RunAttached(ctx, s.stdio, s.path, s.flag, command)
}
