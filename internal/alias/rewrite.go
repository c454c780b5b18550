package alias

import (
	"strings"

	"github.com/jbweber/corral/internal/exitcode"
)

// InvocationFlag is the hidden exec flag marking an alias invocation, so
// that exec maps the caller's working directory into the instance.
const InvocationFlag = "--alias-invocation"

// Rewrite turns an alias invocation into the equivalent exec arguments:
//
//	<alias> [-- args...]  →  exec --alias-invocation <instance> -- <command> [args...]
//
// args excludes the program name. Arguments whose first token is a flag or
// a built-in command are returned unchanged. Options meant for the alias
// must follow a literal "--".
func Rewrite(prog string, args []string, isBuiltin func(string) bool, dict *Dict) ([]string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") || isBuiltin(args[0]) {
		return args, nil
	}

	def, ok := dict.Get(args[0])
	if !ok {
		return nil, exitcode.Usagef("Unknown command or alias")
	}

	var rest []string
	for i, a := range args[1:] {
		if a == "--" {
			rest = append(rest, args[i+2:]...)
			break
		}
		if strings.HasPrefix(a, "-") {
			return nil, exitcode.Usagef("Options to the alias should come after \"--\", like this:\n%s <alias> -- <arguments>", prog)
		}
		rest = append(rest, a)
	}

	out := []string{"exec", InvocationFlag, def.Instance, "--", def.Command}
	return append(out, rest...), nil
}
