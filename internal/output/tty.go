package output

import (
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether stderr is attached to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// IsInteractiveInput reports whether stdin is attached to a terminal.
func IsInteractiveInput() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
