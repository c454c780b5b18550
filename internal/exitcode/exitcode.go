// Package exitcode maps command outcomes onto process exit codes.
package exitcode

import (
	"errors"
	"fmt"
)

// Code is the process exit status of a command.
type Code int

const (
	// Ok means the command succeeded.
	Ok Code = 0
	// CommandLineError means the user supplied invalid input.
	CommandLineError Code = 1
	// CommandFail means the command was valid but failed, including when
	// the daemon could not be reached.
	CommandFail Code = 2
	// Timeout means the --timeout deadline expired before the daemon answered.
	Timeout Code = 5
)

// UsageError reports invalid user input. The message is printed verbatim.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string { return e.msg }

// UsageError marks the error as a command line error.
func (e *UsageError) UsageError() bool { return true }

// Usagef returns a UsageError with a formatted message.
func Usagef(format string, args ...any) error {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// usager is implemented by errors from other packages that may be usage errors.
type usager interface {
	UsageError() bool
}

// IsUsage reports whether err, or any error it wraps, is a usage error.
func IsUsage(err error) bool {
	var u usager
	return errors.As(err, &u) && u.UsageError()
}

// Failure carries an explicit exit code for an operational failure.
type Failure struct {
	Code Code
	Err  error
	// Quiet failures are not reported; the exit code alone carries the outcome.
	Quiet bool
}

func (f *Failure) Error() string { return f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

// Fail wraps err so that Of reports code.
func Fail(code Code, err error) error {
	return &Failure{Code: code, Err: err}
}

// Exit wraps err so that Of reports code and the error is not printed.
func Exit(code Code, err error) error {
	return &Failure{Code: code, Err: err, Quiet: true}
}

// IsQuiet reports whether err should be left unreported.
func IsQuiet(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Quiet
}

// Of returns the exit code for the result of a command.
func Of(err error) Code {
	if err == nil {
		return Ok
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Code
	}
	if IsUsage(err) {
		return CommandLineError
	}
	return CommandFail
}
