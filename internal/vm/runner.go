package vm

import (
	"io"

	"github.com/rs/zerolog"
)

// Runner issues instance commands against the daemon.
type Runner struct {
	Daemon   daemonClient
	Settings settingsReader

	// Home is the host directory mounted into a freshly launched primary
	// instance.
	Home string

	Out io.Writer
	Log zerolog.Logger
}
