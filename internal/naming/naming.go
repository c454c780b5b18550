// Package naming provides the naming rules shared by the command client:
// instance names, alias names and the fixed mount target used when the
// primary instance is provisioned.
package naming

import (
	"fmt"
	"regexp"
	"strings"
)

// HomeMountTarget is the path inside the primary instance where the user's
// home directory is mounted.
const HomeMountTarget = "Home"

// instanceNameRE matches names that start with a letter, contain only
// letters, digits and dashes, and do not end with a dash.
var instanceNameRE = regexp.MustCompile(`^[A-Za-z](?:[A-Za-z0-9-]*[A-Za-z0-9])?$`)

// ValidInstanceName returns an error if name cannot name an instance.
//
// Example: "primary", "web-1" are valid; "1web", "web-", "web_1" are not.
func ValidInstanceName(name string) error {
	if !instanceNameRE.MatchString(name) {
		return fmt.Errorf("invalid instance name %q: must start with a letter, contain only letters, digits and dashes, and not end with a dash", name)
	}
	return nil
}

// DefaultAliasName derives an alias name from a command by stripping any
// leading directories. Dots are kept.
//
// Example: "../more/relative/com.mand" → "com.mand"
func DefaultAliasName(command string) string {
	if i := strings.LastIndex(command, "/"); i >= 0 {
		return command[i+1:]
	}
	return command
}

// ValidAliasName reports whether name can be used as a filename for an
// alias script. Spaces and dots are allowed; path separators are not.
func ValidAliasName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// SplitDefinition splits an "<instance>:<command>" alias definition at the
// first colon. Without a colon the whole text is taken as the instance.
//
// Example: "primary:ls -l" → ("primary", "ls -l")
func SplitDefinition(definition string) (instance, command string) {
	instance, command, _ = strings.Cut(definition, ":")
	return instance, command
}
