package vm

import "github.com/jbweber/corral/internal/exitcode"

// ResolveTargets builds the target list of a multi-instance command that
// defaults to the primary instance.
//
// Explicit names are returned as given and all yields an empty list, which
// the daemon reads as every instance. The primary instance is only used
// when neither is given, and never appended to an explicit list.
func ResolveTargets(names []string, all bool, petenv string) ([]string, error) {
	if len(names) > 0 && all {
		return nil, exitcode.Usagef("Cannot specify name when --all option set")
	}
	if all {
		return []string{}, nil
	}
	if len(names) > 0 {
		return append([]string(nil), names...), nil
	}
	if petenv == "" {
		return nil, exitcode.Usagef("The primary instance is disabled, please provide an instance name")
	}
	return []string{petenv}, nil
}

// ResolveExplicitTargets builds the target list of a command that has no
// default instance, such as delete or info.
func ResolveExplicitTargets(names []string, all bool) ([]string, error) {
	if len(names) == 0 && !all {
		return nil, exitcode.Usagef("Name argument or --all is required")
	}
	return ResolveTargets(names, all, "")
}

// ResolveSingleTarget returns the one instance a command such as shell acts
// on, defaulting to the primary instance.
func ResolveSingleTarget(names []string, petenv string) (string, error) {
	if len(names) > 1 {
		return "", exitcode.Usagef("Too many arguments given")
	}
	targets, err := ResolveTargets(names, false, petenv)
	if err != nil {
		return "", err
	}
	return targets[0], nil
}
