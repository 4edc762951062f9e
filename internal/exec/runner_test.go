package exec

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellExecuteUsesRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell flags")
	}
	m := NewMockRunner()
	s := NewShell(m, Stdio{}, "/bin/zsh")

	err := s.Execute(context.Background(), "ls -la | wc -l")
	require.NoError(t, err)

	require.Len(t, m.Calls, 1)
	assert.Equal(t, "/bin/zsh", m.Calls[0].Name)
	assert.Equal(t, []string{"-c", "ls -la | wc -l"}, m.Calls[0].Args)
}

func TestShellDefault(t *testing.T) {
	s := NewShell(NewMockRunner(), Stdio{}, "")
	if runtime.GOOS == "windows" {
		assert.Equal(t, "cmd.exe", s.Path())
	} else {
		assert.Equal(t, "/bin/sh", s.Path())
	}
}

func TestShellPropagatesRunnerError(t *testing.T) {
	m := NewMockRunner()
	m.AddResponse("/bin/sh", MockResponse{Err: errors.New("no such file")})
	s := NewShell(m, Stdio{}, "/bin/sh")

	err := s.Execute(context.Background(), "true")
	assert.EqualError(t, err, "no such file")
	_, exited := ExitCode(err)
	assert.False(t, exited)
}

func TestOSRunnerRunAttached(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	var out bytes.Buffer
	r := NewOSRunner()

	err := r.RunAttached(context.Background(), Stdio{In: strings.NewReader("hello"), Out: &out}, "/bin/sh", "-c", "cat")
	require.NoError(t, err)
	assert.Equal(t, "hello", out.String())
}

func TestOSRunnerInheritsEnvironment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	t.Setenv("CMDGEN_RUNNER_VALUE", "inherited")
	var out bytes.Buffer

	err := NewOSRunner().RunAttached(context.Background(), Stdio{Out: &out}, "/bin/sh", "-c", `printf %s "$CMDGEN_RUNNER_VALUE"`)
	require.NoError(t, err)
	assert.Equal(t, "inherited", out.String())
}

func TestOSRunnerExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	err := NewOSRunner().RunAttached(context.Background(), Stdio{}, "/bin/sh", "-c", "exit 3")
	code, exited := ExitCode(err)
	assert.True(t, exited)
	assert.Equal(t, 3, code)
}

func TestMockRunnerWritesStdout(t *testing.T) {
	var out bytes.Buffer
	m := NewMockRunner()
	m.AddResponse("echo", MockResponse{Stdout: []byte("hi\n")})

	require.NoError(t, m.RunAttached(context.Background(), Stdio{Out: &out}, "echo", "hi"))
	assert.Equal(t, "hi\n", out.String())
}
