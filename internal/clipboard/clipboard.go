// Package clipboard adapts the system clipboard to the session controller.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available
// (e.g. a headless Linux box without xclip, xsel or wl-copy).
var ErrUnsupported = errors.New("clipboard is not available on this system")

var (
	writeAll    = clipboard.WriteAll
	unsupported = func() bool { return clipboard.Unsupported }
)

// System writes to the OS clipboard.
type System struct{}

func (System) Write(text string) error {
	if unsupported() {
		return ErrUnsupported
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// Discard drops every write. Used when copying is disabled.
type Discard struct{}

func (Discard) Write(string) error { return nil }
