// Package main provides the cmdgen CLI entrypoint.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/joss/cmdgen/internal/clipboard"
	"github.com/joss/cmdgen/internal/config"
	"github.com/joss/cmdgen/internal/exec"
	"github.com/joss/cmdgen/internal/logging"
	"github.com/joss/cmdgen/internal/prompt"
	"github.com/joss/cmdgen/internal/provider"
	"github.com/joss/cmdgen/internal/render"
	"github.com/joss/cmdgen/internal/session"
	"github.com/joss/cmdgen/internal/sysinfo"
	"github.com/joss/cmdgen/internal/terminal"
)

var version = "0.1.0"

func main() {
	// Interrupts cancel an in-flight backend request. The loop hands
	// them back to the default handler once the request is done.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	d := defaultDeps()
	d.releaseSignals = stop
	code := execute(ctx, os.Args[1:], d)
	stop()
	logging.Sync()
	os.Exit(code)
}

// deps are the process-level collaborators, swapped out in tests.
type deps struct {
	console      *render.Console
	keys         session.KeyReader
	clipboard    session.Clipboard
	shell        session.Shell
	lookup       config.LookupFunc
	envFiles     []string
	customPrompt string
	resources    fs.FS
	systemInfo   func() string
	providerOpts []provider.Option

	releaseSignals func()
}

func defaultDeps() deps {
	paths := config.GetPaths()
	shellEnv := os.Getenv("SHELL")
	if shellEnv == "" {
		shellEnv = os.Getenv("ComSpec")
	}
	return deps{
		console:      render.Stdio(),
		keys:         terminal.NewKeyReader(),
		clipboard:    clipboard.System{},
		shell:        exec.NewShell(exec.NewOSRunner(), exec.Terminal(), shellEnv),
		lookup:       os.LookupEnv,
		envFiles:     []string{paths.LocalEnvFile, paths.EnvFile},
		customPrompt: paths.CustomPrompt,
		resources:    prompt.Resources(),
		systemInfo:   func() string { return sysinfo.Collect().Describe() },
	}
}

type options struct {
	flags   config.Flags
	verbose bool
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, d deps) int {
	code := 0
	cmd := newRootCmd(d, &code)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		d.console.Error("Error: %v", err)
		return 1
	}
	return code
}

func newRootCmd(d deps, code *int) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "cmdgen [flags] <prompt...>",
		Short: "Turn a natural-language request into a shell command",
		Long: `cmdgen asks an LLM for a single shell command that does what you describe,
shows it, and lets you copy it, execute it, or abort.

Hosted API (default) reads MODEL_NAME, API_BASE, API_KEY and EXTRA_BODY.
Local server (--local-backend) talks to Ollama and reads OLLAMA_MODEL_NAME
and OLLAMA_HOST. Variables may also come from ./.env or ~/.cmdgen/.env.`,
		Example: `  cmdgen list all files in current directory
  cmdgen --local-backend find all python files modified in the last week
  cmdgen --local-backend --model llama3 "create a tarball of the src directory"`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			handler := logging.NewRecoveryHandler("cli")
			err := handler.WrapError(func() error {
				*code = run(cmd, args, opts, d)
				return nil
			})
			if err != nil {
				d.console.Error("Unexpected error: %v", err)
				*code = 1
			}
		},
	}

	cmd.Flags().StringVar(&opts.flags.Model, "model", "", "Model name to use (default: value from the environment)")
	cmd.Flags().BoolVar(&opts.flags.LocalBackend, "local-backend", false, "Use a local Ollama server for inference")
	cmd.Flags().StringVar(&opts.flags.Host, "host", "", "Local server host (default: OLLAMA_HOST or "+config.DefaultLocalHost+")")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Write debug logs to stderr")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts options, d deps) int {
	userPrompt := strings.TrimSpace(strings.Join(args, " "))
	if userPrompt == "" {
		d.console.Error("%v", session.ErrUsage)
		cmd.SetOut(cmd.ErrOrStderr())
		cmd.Usage()
		return 1
	}

	loaded, envErr := config.LoadEnvFiles(d.envFiles...)

	if opts.verbose || config.LogEnabled(d.lookup) {
		logging.Configure(os.Stderr, zapcore.DebugLevel)
	}
	ctx := logging.WithRequestID(cmd.Context(), "")
	log := logging.FromContext(ctx, "cli")

	if envErr != nil {
		d.console.Warn("Ignoring env file: %v", envErr)
	}
	if len(loaded) == 0 {
		log.Debug("env_files_missing", map[string]interface{}{"searched": d.envFiles})
	} else {
		log.Debug("env_files", map[string]interface{}{"loaded": loaded})
	}

	cfg, err := config.Load(opts.flags, d.lookup)
	if err != nil {
		reportConfigError(d.console, err, d.envFiles, loaded)
		log.Error("config_failed", nil, err)
		return 1
	}

	systemPrompt, err := prompt.LoadSystemPrompt(d.resources)
	if err != nil {
		d.console.Error("%v", err)
		log.Error("resource_missing", nil, err)
		return 1
	}

	backend, err := provider.Select(cfg, d.providerOpts...)
	if err != nil {
		d.console.Error("%v", err)
		return 1
	}

	if cfg.Provider() == config.LocalServer {
		d.console.Info("Using local server with model: %s", cfg.Model())
	} else {
		d.console.Info("Using model: %s", cfg.Model())
	}
	log.Info("backend_selected", map[string]interface{}{
		"provider": cfg.Provider().String(),
		"model":    cfg.Model(),
		"host":     backend.Host(),
	})

	custom, err := prompt.LoadCustomInstructions(d.customPrompt)
	if err != nil {
		d.console.Warn("Ignoring custom instructions: %v", err)
		log.Warn("custom_prompt_unreadable", nil, err)
	}

	loop := &session.Loop{
		Backend:            backend,
		Keys:               d.keys,
		Clipboard:          d.clipboard,
		Shell:              d.shell,
		Console:            d.console,
		Log:                logging.FromContext(ctx, "session"),
		Risk:               exec.NewRiskAnalyzer(),
		ReleaseSignals:     d.releaseSignals,
		SystemPrompt:       systemPrompt,
		SystemInfo:         d.systemInfo(),
		CustomInstructions: custom,
	}

	res, err := loop.Run(ctx, userPrompt)
	return session.ExitCode(res, err)
}

func reportConfigError(c *render.Console, err error, searched, loaded []string) {
	var missing *config.MissingError
	if errors.As(err, &missing) {
		c.Error("%v", err)
		if len(loaded) == 0 && len(searched) > 0 {
			c.Warn("No .env file found (looked in %s).", strings.Join(searched, ", "))
		}
		c.Error("Set %s in the environment, ./.env or %s.", missing.Var, config.GetPaths().EnvFile)
		return
	}
	c.Error("%v", err)
}
