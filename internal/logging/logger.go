// Package logging builds the client's diagnostic logger.
//
// Diagnostics go to stderr and are filtered by the number of -v flags;
// command results and user-facing messages never go through the logger.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// App is the value of the app field on every log event.
const App = "corral"

// LevelFor maps a -v count onto a zerolog level.
func LevelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// New returns a console logger writing to w at the level for verbosity.
func New(w io.Writer, verbosity int) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).
		Level(LevelFor(verbosity)).
		With().Timestamp().Str("app", App).
		Logger()
}
