// Package status interprets the instance states reported by the daemon.
package status

import "strings"

// State is an instance state as reported by the daemon.
type State string

const (
	StateRunning         State = "Running"
	StateStarting        State = "Starting"
	StateRestarting      State = "Restarting"
	StateStopped         State = "Stopped"
	StateDelayedShutdown State = "Delayed Shutdown"
	StateSuspending      State = "Suspending"
	StateSuspended       State = "Suspended"
	StateDeleted         State = "Deleted"
	StateUnknown         State = "Unknown"
)

var knownStates = []State{
	StateRunning,
	StateStarting,
	StateRestarting,
	StateStopped,
	StateDelayedShutdown,
	StateSuspending,
	StateSuspended,
	StateDeleted,
}

// Parse maps a daemon state string to a State, ignoring case and
// surrounding space. Unrecognized strings are StateUnknown.
func Parse(s string) State {
	s = strings.TrimSpace(s)
	for _, st := range knownStates {
		if strings.EqualFold(s, string(st)) {
			return st
		}
	}
	return StateUnknown
}

// IsRunning returns true if the instance is up and reachable.
// A pending delayed shutdown still counts as running.
func IsRunning(st State) bool {
	return st == StateRunning || st == StateDelayedShutdown
}

// IsDeleted returns true if the instance is deleted but not yet purged.
func IsDeleted(st State) bool {
	return st == StateDeleted
}

// IsTransitioning returns true if the instance is between two states.
func IsTransitioning(st State) bool {
	return st == StateStarting || st == StateRestarting || st == StateSuspending
}

// HasRuntimeInfo returns true if the daemon can report load, memory and
// disk usage for an instance in this state.
func HasRuntimeInfo(st State) bool {
	return IsRunning(st)
}

// Rank orders states for display: running instances first, deleted last.
func Rank(st State) int {
	switch {
	case IsRunning(st):
		return 0
	case IsTransitioning(st):
		return 1
	case st == StateSuspended, st == StateStopped:
		return 2
	case IsDeleted(st):
		return 4
	default:
		return 3
	}
}
