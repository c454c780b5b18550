package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jbweber/corral/internal/exitcode"
	"github.com/jbweber/corral/internal/settings"
	"github.com/jbweber/corral/internal/vm"
)

func (a *app) getCommand() *cobra.Command {
	var raw, keys bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration setting",
		Long: `Print the value of a setting. Keys starting with "local." are owned
by the daemon; every other key is stored on this host.

With --keys, list the available keys instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if keys {
				if len(args) > 1 {
					return exitcode.Usagef("Need at most one setting key")
				}
				all, err := a.registry.Keys(ctx)
				if err != nil {
					return settingsFailure("get", err)
				}
				if len(args) == 1 {
					if !slices.Contains(all, args[0]) {
						return &settings.Error{Kind: settings.KindUnrecognized, Key: args[0]}
					}
					all = args
				}
				_, _ = fmt.Fprint(out, joinLines(all))
				return nil
			}

			if len(args) != 1 {
				return exitcode.Usagef("Need exactly one setting key")
			}
			val, err := a.registry.Get(ctx, args[0])
			if err != nil {
				return settingsFailure("get", err)
			}
			_, _ = fmt.Fprintln(out, settings.Display(val, raw))
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the value as stored, without placeholders")
	cmd.Flags().BoolVar(&keys, "keys", false, "List available setting keys")
	return cmd
}

func (a *app) setCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key>[=<value>]",
		Short: "Set a configuration setting",
		Long: `Set a setting. Without "=<value>" the value is read from standard
input. A literal '=' in the key is written as '\='.`,
		Args: usageArgs(cobra.ExactArgs(1), "Need exactly one key-value pair (in <key>=<value> form)."),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, val, hasValue, err := settings.ParseKeyValue(args[0])
			if err != nil {
				return err
			}
			if !hasValue {
				val, err = readValue(cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
			}

			if err := a.registry.Set(cmd.Context(), key, val); err != nil {
				return settingsFailure("set", err)
			}
			return nil
		},
	}
}

// readValue reads one line from in, prompting first when in is a terminal.
func readValue(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(out, "Please enter value: ")
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", exitcode.Usagef("Failed to read value")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// settingsFailure reports a daemon-side failure the way other daemon
// commands do. Local failures are returned as they are.
func settingsFailure(command string, err error) error {
	var serr *settings.Error
	if errors.As(err, &serr) && serr.Kind == settings.KindRemote {
		return &vm.CallError{Command: command, Err: serr.Err}
	}
	return err
}
