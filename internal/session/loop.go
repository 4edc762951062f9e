// Package session runs one request through the interaction loop:
// assemble the prompt, ask the backend, show the command, and act on a
// single keypress.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joss/cmdgen/internal/exec"
	"github.com/joss/cmdgen/internal/logging"
	"github.com/joss/cmdgen/internal/prompt"
	"github.com/joss/cmdgen/internal/render"
	"github.com/joss/cmdgen/pkg/llm"
)

// ErrUsage is returned for an empty request.
var ErrUsage = errors.New("usage: a natural-language prompt is required")

// KeyReader blocks until one key is pressed.
type KeyReader interface {
	ReadKey() (byte, error)
}

// Clipboard receives the command on Copy.
type Clipboard interface {
	Copy(text string) error
}

// Shell runs the command on Execute.
type Shell interface {
	Execute(ctx context.Context, command string) error
}

// CommandResult is the backend reply, trimmed. It is used verbatim.
type CommandResult struct {
	Text string
}

// Result is the outcome of one pass through the loop.
type Result struct {
	Command CommandResult
	Action  Action
}

// ExitCode maps the outcome to the process exit status. Copy and Execute
// exit 0 even when the collaborator failed or the command exited non-zero.
func (r Result) ExitCode() int {
	if r.Action == Abort {
		return 1
	}
	return 0
}

// ExitCode returns the status for a Run outcome.
func ExitCode(r Result, err error) int {
	if err != nil {
		return 1
	}
	return r.ExitCode()
}

// RiskAssessor grades a command before the user decides on it.
type RiskAssessor interface {
	Assess(command string) exec.Assessment
}

// Loop wires the backend and collaborators. Log, Risk and ReleaseSignals
// are optional.
type Loop struct {
	Backend   llm.Completer
	Keys      KeyReader
	Clipboard Clipboard
	Shell     Shell
	Console   *render.Console
	Log       *logging.Logger
	Risk      RiskAssessor

	// ReleaseSignals runs once the backend call returns. The CLI uses it
	// to restore default interrupt handling, so Ctrl-C while waiting for a
	// key on a non-terminal stdin ends the process.
	ReleaseSignals func()

	SystemPrompt       string
	SystemInfo         string
	CustomInstructions string

	state State
}

// State returns the current state.
func (l *Loop) State() State { return l.state }

func (l *Loop) transition(to State) {
	l.log().Debug("transition", map[string]interface{}{
		"from": l.state.String(),
		"to":   to.String(),
	})
	l.state = to
}

func (l *Loop) log() *logging.Logger {
	if l.Log == nil {
		l.Log = logging.New("session")
	}
	return l.Log
}

// Run performs one full cycle. Failures are reported on the console before
// Run returns; the caller only maps the outcome to an exit code.
func (l *Loop) Run(ctx context.Context, userPrompt string) (Result, error) {
	l.state = StateIdle
	defer l.transition(StateTerminated)

	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		l.Console.Error("%v", ErrUsage)
		return Result{Action: Abort}, ErrUsage
	}

	l.transition(StateRequesting)
	full := prompt.Assemble(userPrompt, l.SystemInfo, l.CustomInstructions)

	start := time.Now()
	text, err := l.Backend.Complete(ctx, l.SystemPrompt, full)
	if l.ReleaseSignals != nil {
		l.ReleaseSignals()
	}
	if err != nil {
		l.reportBackendError(err)
		return Result{Action: Abort}, fmt.Errorf("complete: %w", err)
	}
	l.log().TimedEvent("complete", start, map[string]interface{}{
		"backend": l.Backend.ID(),
		"host":    l.Backend.Host(),
	})

	result := Result{Command: CommandResult{Text: strings.TrimSpace(text)}}

	l.transition(StateDisplaying)
	l.Console.Command(result.Command.Text)
	l.flagRisk(result.Command.Text)

	l.transition(StateAwaitingKeypress)
	l.Console.ActionMenu()
	key, err := l.Keys.ReadKey()
	if err != nil {
		// A closed or broken stdin cannot confirm anything.
		l.Console.Keypress(0)
		l.log().Warn("read_key_failed", nil, err)
		key = 0
	} else {
		l.Console.Keypress(key)
	}

	result.Action = ActionForKey(key)
	l.transition(result.Action.state())

	switch result.Action {
	case Copy:
		l.copy(result.Command.Text)
	case Execute:
		l.execute(ctx, result.Command.Text)
	default:
		l.Console.Error("Aborting...")
	}

	return result, nil
}

func (l *Loop) flagRisk(command string) {
	if l.Risk == nil {
		return
	}
	a := l.Risk.Assess(command)
	if a.Risk == exec.RiskNone {
		return
	}
	l.Console.Caution(a.Reason, a.Hint)
	l.log().Info("risky_command", map[string]interface{}{
		"risk":   a.Risk.String(),
		"reason": a.Reason,
	})
}

func (l *Loop) reportBackendError(err error) {
	var unavailable *llm.UnavailableError
	var malformed *llm.MalformedResponseError

	switch {
	case errors.As(err, &unavailable):
		l.Console.Error("Could not connect to model at %s.", unavailable.Host)
		l.Console.Error("%v", unavailable.Err)
	case errors.As(err, &malformed):
		l.Console.Error("Unexpected response from model: %s", malformed.Reason)
		l.Console.Error("%s", render.Truncate(malformed.Raw, 512))
	default:
		l.Console.Error("Unexpected error: %v", err)
	}
	l.Console.Error("Exiting...")
	l.log().Error("complete_failed", map[string]interface{}{
		"backend": l.Backend.ID(),
		"host":    l.Backend.Host(),
	}, err)
}

// copy never fails the run; a missing clipboard is reported as a warning.
func (l *Loop) copy(command string) {
	l.Console.Success("Copying command to clipboard...")
	if err := l.Clipboard.Copy(command); err != nil {
		l.Console.Warn("Could not copy command: %v", err)
		l.log().Warn("copy_failed", nil, err)
		return
	}
	l.Console.Success("Command copied to clipboard!")
}

// execute runs the command; its exit status is not propagated.
func (l *Loop) execute(ctx context.Context, command string) {
	l.Console.Success("Executing command...")
	err := l.Shell.Execute(ctx, command)
	if err == nil {
		return
	}
	if code, exited := exec.ExitCode(err); exited {
		l.log().Debug("command_exited", map[string]interface{}{"exit_code": code})
		return
	}
	l.Console.Warn("Could not execute command: %v", err)
	l.log().Warn("execute_failed", nil, err)
}
