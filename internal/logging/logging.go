// ABOUTME: Console logger setup shared by the CLI, HTTP and MCP entry points
// ABOUTME: Wraps zerolog with verbose/quiet level selection
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w.
// verbose enables debug output, quiet limits output to warnings and errors.
func New(w io.Writer, verbose, quiet bool) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case verbose:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.WarnLevel
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	return zerolog.New(out).Level(level).With().Timestamp().Str("app", "urban-lens").Logger()
}
