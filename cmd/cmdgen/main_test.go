package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"testing/fstest"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/cmdgen/internal/config"
	"github.com/joss/cmdgen/internal/prompt"
	"github.com/joss/cmdgen/internal/render"
)

type fixedKey byte

func (k fixedKey) ReadKey() (byte, error) { return byte(k), nil }

type copies struct{ got []string }

func (c *copies) Copy(text string) error {
	c.got = append(c.got, text)
	return nil
}

type shellRuns struct{ got []string }

func (s *shellRuns) Execute(ctx context.Context, command string) error {
	s.got = append(s.got, command)
	return nil
}

type testEnv struct {
	deps  deps
	out   *bytes.Buffer
	err   *bytes.Buffer
	copy  *copies
	shell *shellRuns
}

func newTestEnv(t *testing.T, key byte, env map[string]string) *testEnv {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	te := &testEnv{
		out:   &bytes.Buffer{},
		err:   &bytes.Buffer{},
		copy:  &copies{},
		shell: &shellRuns{},
	}
	te.deps = deps{
		console:   render.NewConsole(te.out, te.err),
		keys:      fixedKey(key),
		clipboard: te.copy,
		shell:     te.shell,
		lookup: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
		customPrompt: t.TempDir() + "/custom_prompt.txt",
		resources:    prompt.Resources(),
		systemInfo:   func() string { return "OSsystem: Linux" },
	}
	return te
}

func chatServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + reply + `"}}]}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExecuteCopiesCommand(t *testing.T) {
	server := chatServer(t, "ls -la")
	te := newTestEnv(t, 'c', map[string]string{
		config.EnvModelName: "gpt-4o-mini",
		config.EnvAPIBase:   server.URL,
	})

	released := 0
	te.deps.releaseSignals = func() { released++ }

	code := execute(context.Background(), []string{"list", "all", "files"}, te.deps)

	assert.Equal(t, 0, code)
	assert.Equal(t, 1, released)
	assert.Equal(t, []string{"ls -la"}, te.copy.got)
	assert.Empty(t, te.shell.got)
	assert.Contains(t, te.out.String(), "Using model: gpt-4o-mini")
}

func TestExecuteRunsCommand(t *testing.T) {
	server := chatServer(t, "du -sh .")
	te := newTestEnv(t, 'e', map[string]string{
		config.EnvModelName: "m",
		config.EnvAPIBase:   server.URL,
	})

	code := execute(context.Background(), []string{"how big is this dir"}, te.deps)

	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"du -sh ."}, te.shell.got)
}

func TestExecuteAbort(t *testing.T) {
	server := chatServer(t, "ls")
	te := newTestEnv(t, 'x', map[string]string{
		config.EnvModelName: "m",
		config.EnvAPIBase:   server.URL,
	})

	code := execute(context.Background(), []string{"ls"}, te.deps)

	assert.Equal(t, 1, code)
	assert.Empty(t, te.copy.got)
	assert.Empty(t, te.shell.got)
}

func TestExecuteLocalBackendFlags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		w.Write([]byte(`{"message":{"role":"assistant","content":"uname -a"},"done":true}`))
	}))
	defer server.Close()

	te := newTestEnv(t, 'c', map[string]string{})

	code := execute(context.Background(), []string{"--local-backend", "--model", "llama3", "--host", server.URL, "show", "kernel"}, te.deps)

	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"uname -a"}, te.copy.got)
	assert.Contains(t, te.out.String(), "Using local server with model: llama3")
}

func TestExecuteEmptyPrompt(t *testing.T) {
	te := newTestEnv(t, 'e', map[string]string{})

	code := execute(context.Background(), []string{}, te.deps)

	assert.Equal(t, 1, code)
	assert.Contains(t, te.err.String(), "prompt is required")
}

func TestExecuteConfigMissing(t *testing.T) {
	te := newTestEnv(t, 'e', map[string]string{config.EnvModelName: "m"})

	code := execute(context.Background(), []string{"list files"}, te.deps)

	assert.Equal(t, 1, code)
	assert.Contains(t, te.err.String(), config.EnvAPIBase)
}

func TestExecuteConfigMissingNotesAbsentEnvFiles(t *testing.T) {
	te := newTestEnv(t, 'e', map[string]string{})
	dir := t.TempDir()
	te.deps.envFiles = []string{dir + "/.env", dir + "/home.env"}

	code := execute(context.Background(), []string{"list files"}, te.deps)

	assert.Equal(t, 1, code)
	assert.Contains(t, te.err.String(), "No .env file found")
	assert.Contains(t, te.err.String(), dir+"/.env")
}

func TestExecuteConfigMissingWithEnvFileLoaded(t *testing.T) {
	te := newTestEnv(t, 'e', map[string]string{})
	envFile := t.TempDir() + "/.env"
	require.NoError(t, os.WriteFile(envFile, []byte("CMDGEN_MAIN_TEST_UNUSED=1\n"), 0o600))
	t.Setenv("CMDGEN_MAIN_TEST_UNUSED", "1")
	te.deps.envFiles = []string{envFile}

	code := execute(context.Background(), []string{"list files"}, te.deps)

	assert.Equal(t, 1, code)
	assert.NotContains(t, te.err.String(), "No .env file found")
	assert.Contains(t, te.err.String(), config.EnvModelName)
}

func TestExecuteResourceMissing(t *testing.T) {
	te := newTestEnv(t, 'e', map[string]string{
		config.EnvModelName: "m",
		config.EnvAPIBase:   "http://127.0.0.1:1",
	})
	te.deps.resources = fstest.MapFS{}

	code := execute(context.Background(), []string{"list files"}, te.deps)

	assert.Equal(t, 1, code)
	assert.Contains(t, te.err.String(), "system prompt resource missing")
}

func TestExecuteBackendDown(t *testing.T) {
	server := chatServer(t, "")
	url := server.URL
	server.Close()

	te := newTestEnv(t, 'e', map[string]string{
		config.EnvModelName: "m",
		config.EnvAPIBase:   url,
	})

	code := execute(context.Background(), []string{"list files"}, te.deps)

	assert.Equal(t, 1, code)
	assert.Contains(t, te.err.String(), url)
	assert.Empty(t, te.shell.got)
}

func TestExecuteUnknownFlag(t *testing.T) {
	te := newTestEnv(t, 'e', map[string]string{})

	code := execute(context.Background(), []string{"--ollama", "ls"}, te.deps)

	assert.Equal(t, 1, code)
	assert.Contains(t, te.err.String(), "unknown flag")
}

func TestRootCmdFlags(t *testing.T) {
	code := 0
	cmd := newRootCmd(deps{}, &code)

	for _, name := range []string{"model", "local-backend", "host", "verbose"} {
		require.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "", cmd.Flags().Lookup("model").DefValue)
	assert.Equal(t, "false", cmd.Flags().Lookup("local-backend").DefValue)
	assert.Equal(t, version, cmd.Version)
}
