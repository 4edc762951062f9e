// Package render provides the user-facing terminal output.
// Separates presentation from the interaction loop.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	info    = color.New(color.FgHiBlue)
	success = color.New(color.FgHiGreen)
	failure = color.New(color.FgHiRed)
	warning = color.New(color.FgHiYellow)

	command = color.New(color.FgHiGreen, color.Bold)

	ruleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Console writes status lines to out and failures to err.
type Console struct {
	out io.Writer
	err io.Writer
}

// NewConsole creates a Console over the given writers.
func NewConsole(out, err io.Writer) *Console {
	return &Console{out: out, err: err}
}

// Stdio returns a Console over os.Stdout and os.Stderr.
func Stdio() *Console {
	return NewConsole(os.Stdout, os.Stderr)
}

// Info writes a blue status line.
func (c *Console) Info(format string, args ...any) {
	info.Fprintln(c.out, fmt.Sprintf(format, args...))
}

// Success writes a green status line.
func (c *Console) Success(format string, args ...any) {
	success.Fprintln(c.out, fmt.Sprintf(format, args...))
}

// Warn writes a yellow line to the error stream.
func (c *Console) Warn(format string, args ...any) {
	warning.Fprintln(c.err, fmt.Sprintf(format, args...))
}

// Error writes a red line to the error stream.
func (c *Console) Error(format string, args ...any) {
	failure.Fprintln(c.err, fmt.Sprintf(format, args...))
}

const (
	minRuleWidth = 20
	maxRuleWidth = 80
)

// Command shows the generated command between two rules. The command text
// is written byte for byte; only the rules are styled.
func (c *Console) Command(text string) {
	info.Fprintln(c.out, "Command found:")
	rule := ruleStyle.Render(strings.Repeat("═", ruleWidth(text)))
	fmt.Fprintln(c.out, rule)
	command.Fprintln(c.out, text)
	fmt.Fprintln(c.out, rule)
	fmt.Fprintln(c.out)
}

func ruleWidth(text string) int {
	w := minRuleWidth
	for _, line := range strings.Split(text, "\n") {
		if lw := lipgloss.Width(line); lw > w {
			w = lw
		}
	}
	return min(w, maxRuleWidth)
}

// Caution flags a risky command under the panel. hint may be empty.
func (c *Console) Caution(reason, hint string) {
	if hint == "" {
		warning.Fprintf(c.out, "Caution: %s\n", reason)
		return
	}
	warning.Fprintf(c.out, "Caution: %s (try: %s)\n", reason, hint)
}

// ActionMenu shows the choices and leaves the cursor after the prompt.
func (c *Console) ActionMenu() {
	info.Fprintln(c.out, "What do you want to do with this command?")
	info.Fprintln(c.out, "[c] Copy  [e] Execute  [a] Abort")
	info.Fprint(c.out, "Press key: ")
}

// Keypress echoes the pressed key and ends the prompt line.
func (c *Console) Keypress(key byte) {
	if key >= 0x20 && key < 0x7f {
		fmt.Fprintf(c.out, "%c", key)
	}
	fmt.Fprintln(c.out)
}

// Truncate shortens s to at most max bytes without splitting a rune.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:runeBoundary(s, max)]
	}
	return s[:runeBoundary(s, max-3)] + "..."
}

// runeBoundary backs n up to the start of the rune containing s[n].
func runeBoundary(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
