// Package terminal reads single keypresses from the controlling terminal.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Mode switches a file descriptor in and out of raw mode.
type Mode interface {
	IsTerminal(fd int) bool
	MakeRaw(fd int) (*term.State, error)
	Restore(fd int, state *term.State) error
}

type termMode struct{}

func (termMode) IsTerminal(fd int) bool                  { return term.IsTerminal(fd) }
func (termMode) MakeRaw(fd int) (*term.State, error)     { return term.MakeRaw(fd) }
func (termMode) Restore(fd int, state *term.State) error { return term.Restore(fd, state) }

// KeyReader reads one byte at a time. On a terminal the byte is read in
// raw mode, so no Enter is needed.
type KeyReader struct {
	in   io.Reader
	fd   int
	mode Mode
}

// NewKeyReader reads from stdin.
func NewKeyReader() *KeyReader {
	return &KeyReader{in: os.Stdin, fd: int(os.Stdin.Fd()), mode: termMode{}}
}

// NewKeyReaderWithMode reads from in, using mode for fd. Used by tests.
func NewKeyReaderWithMode(in io.Reader, fd int, mode Mode) *KeyReader {
	return &KeyReader{in: in, fd: fd, mode: mode}
}

// ReadKey blocks until exactly one byte is available. The previous terminal
// mode is restored before ReadKey returns, including on panic.
func (k *KeyReader) ReadKey() (key byte, err error) {
	if k.mode != nil && k.mode.IsTerminal(k.fd) {
		state, rawErr := k.mode.MakeRaw(k.fd)
		if rawErr != nil {
			return 0, fmt.Errorf("enter raw mode: %w", rawErr)
		}
		defer func() {
			if rerr := k.mode.Restore(k.fd, state); rerr != nil && err == nil {
				err = fmt.Errorf("restore terminal: %w", rerr)
			}
		}()
	}

	var buf [1]byte
	if _, err := io.ReadFull(k.in, buf[:]); err != nil {
		return 0, fmt.Errorf("read key: %w", err)
	}
	return buf[0], nil
}
