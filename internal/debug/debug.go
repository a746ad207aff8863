// Package debug provides the conditional debug output shared by all stages.
package debug

import (
	"fmt"
	"io"
	"os"
)

// Logger provides conditional debug output.
type Logger struct {
	// Enabled turns output on.
	Enabled bool
	// Writer receives the output. Defaults to os.Stderr.
	Writer io.Writer
}

// New returns a Logger writing to stderr when enabled is true.
func New(enabled bool) Logger {
	return Logger{Enabled: enabled, Writer: os.Stderr}
}

// Printf prints debug output prefixed with "[debug]: " if logging is enabled.
func (l Logger) Printf(format string, args ...any) {
	if !l.Enabled {
		return
	}

	w := l.Writer
	if w == nil {
		w = os.Stderr
	}

	fmt.Fprintf(w, "[debug]: "+format, args...)
}
