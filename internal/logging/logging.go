// Package logging builds the leveled console logger.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Prefix is prepended to every log line.
const Prefix = "tasklane"

// New returns a logger writing to w. Debug enables debug-level output;
// otherwise only warnings and errors are written.
func New(w io.Writer, debug bool) *log.Logger {
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:     level,
		Formatter: log.TextFormatter,
		Prefix:    Prefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
