package settings

import "fmt"

// Kind classifies a settings failure.
type Kind int

const (
	// KindUnrecognized means no handler knows the key.
	KindUnrecognized Kind = iota + 1
	// KindInvalid means the value was rejected for the key.
	KindInvalid
	// KindPersistent means the value could not be read from or written to storage.
	KindPersistent
	// KindRemote means the daemon failed to serve a daemon-owned key.
	KindRemote
)

// Error is the single error type returned by settings handlers.
type Error struct {
	Kind   Kind
	Key    string
	Value  string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindUnrecognized:
		return fmt.Sprintf("Unrecognized settings key: '%s'", e.Key)
	case KindInvalid:
		return fmt.Sprintf("Invalid setting '%s=%s': %s", e.Key, e.Value, e.Reason)
	case KindPersistent:
		return fmt.Sprintf("Could not persist setting '%s': %v", e.Key, e.Err)
	default:
		return e.Err.Error()
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// UsageError reports whether the failure was caused by user input.
func (e *Error) UsageError() bool {
	return e.Kind == KindUnrecognized || e.Kind == KindInvalid
}

func unrecognized(key string) *Error {
	return &Error{Kind: KindUnrecognized, Key: key}
}
