// Package format renders sync progress for the terminal.
package format

import (
	"io"
	"os"

	"golang.org/x/term"
)

// ANSI color codes.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

// fdWriter is implemented by writers backed by a file descriptor, such as *os.File.
type fdWriter interface {
	Fd() uintptr
}

// ColorEnabled reports whether w is a terminal and NO_COLOR (https://no-color.org)
// is unset. Writers without an Fd method are never colored.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if f, ok := w.(fdWriter); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// Colorize wraps text in code when enabled. An empty code leaves text untouched.
func Colorize(enabled bool, code, text string) string {
	if !enabled || code == "" {
		return text
	}
	return code + text + Reset
}
