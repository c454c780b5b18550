package settings

import (
	"strings"

	"github.com/jbweber/corral/internal/exitcode"
)

// EmptyDisplay is shown by get for an empty value unless --raw is given.
const EmptyDisplay = "<empty>"

// ParseKeyValue splits a "key=value" argument. A backslash escapes an
// equals sign. Without an unescaped '=' the whole argument is the key and
// hasValue is false. More than one unescaped '=' or an empty key is a
// usage error.
//
// Example: `a\=b=c` → ("a=b", "c", true)
func ParseKeyValue(arg string) (key, val string, hasValue bool, err error) {
	var parts []string
	var cur strings.Builder

	for i := 0; i < len(arg); i++ {
		c := arg[i]
		if c == '\\' && i+1 < len(arg) && arg[i+1] == '=' {
			cur.WriteByte('=')
			i++
			continue
		}
		if c == '=' {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	parts = append(parts, cur.String())

	switch {
	case len(parts) > 2:
		return "", "", false, exitcode.Usagef("Bad key-value format: '%s'", arg)
	case parts[0] == "":
		return "", "", false, exitcode.Usagef("Need a non-empty key: '%s'", arg)
	case len(parts) == 2:
		return parts[0], parts[1], true, nil
	default:
		return parts[0], "", false, nil
	}
}

// Display renders a value for get output.
func Display(val string, raw bool) string {
	if val == "" && !raw {
		return EmptyDisplay
	}
	return val
}
