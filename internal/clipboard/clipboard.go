// Package clipboard copies text with the platform clipboard utility
// (pbcopy, xclip, xsel, wl-copy, or the Windows clipboard).
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility is installed.
var ErrUnavailable = errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard)")

// Package-level hooks to allow mocking in tests.
var (
	clipboardWriteAll = clipboard.WriteAll
	unsupported       = func() bool { return clipboard.Unsupported }
)

// System writes to the system clipboard.
type System struct{}

// Copy places text on the clipboard.
func (System) Copy(text string) error {
	if unsupported() {
		return ErrUnavailable
	}
	if err := clipboardWriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
