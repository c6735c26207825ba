// Package logger provides a configured zerolog logger.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02 15:04:05"

// New returns a logger that writes console-formatted lines to stderr.
func New(component string) zerolog.Logger {
	return NewWithWriter(os.Stderr, component)
}

// NewWithWriter is New with an explicit destination. Color is disabled so the
// output stays readable when redirected.
func NewWithWriter(w io.Writer, component string) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: timeFormat,
		NoColor:    true,
	}
	return zerolog.New(out).With().
		Timestamp().
		Str("component", component).
		Logger().
		Level(zerolog.InfoLevel)
}

// SetVerbose switches the logger to debug level when verbose is set.
func SetVerbose(log zerolog.Logger, verbose bool) zerolog.Logger {
	if verbose {
		return log.Level(zerolog.DebugLevel)
	}
	return log
}
