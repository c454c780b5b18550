package vm

import "github.com/jbweber/corral/internal/rpc"

// CallError is a failed daemon call, reported against the command that
// issued it and the instances it targeted.
type CallError struct {
	Command string
	Targets []string
	Err     error
}

// Error renders "<command> failed: <message>" plus one line per instance
// named in the daemon's error detail.
func (e *CallError) Error() string {
	return rpc.FailureMessage(e.Command, e.Err, e.Targets)
}

// Unwrap returns the daemon error.
func (e *CallError) Unwrap() error {
	return e.Err
}

func callError(command string, targets []string, err error) error {
	if err == nil {
		return nil
	}
	return &CallError{Command: command, Targets: targets, Err: err}
}
