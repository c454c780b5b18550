package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/corral/internal/alias"
	"github.com/jbweber/corral/internal/output"
)

func (a *app) aliasManager(cmd *cobra.Command) *alias.Manager {
	return &alias.Manager{
		Store:     a.deps.Aliases,
		Scripts:   a.deps.Scripts,
		Daemon:    a.daemon,
		IsBuiltin: builtins(cmd.Root()),
		Getenv:    a.deps.Getenv,
		Out:       cmd.OutOrStdout(),
		ErrOut:    cmd.ErrOrStderr(),
		Log:       a.log,
	}
}

func (a *app) aliasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "alias <instance>:<command> [<name>]",
		Short: "Create an alias",
		Long: `Create an alias that runs a command on an instance. The alias name
defaults to the command's file name.

Once defined, "` + a.deps.Prog + ` <name> -- <arguments>" runs the command,
and so does the script created in the alias scripts directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.aliasManager(cmd).Create(cmd.Context(), args)
		},
	}
}

func (a *app) unaliasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unalias <name>",
		Short: "Remove an alias",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.aliasManager(cmd).Remove(args)
		},
	}
}

func (a *app) aliasesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "List available aliases",
		Args:  usageArgs(cobra.NoArgs, "This command takes no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := output.NewFormatter(format)
			if err != nil {
				return err
			}

			dict, err := a.deps.Aliases.Load()
			if err != nil {
				return err
			}
			out, err := f.FormatAliases(dict.Specs())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(output.FormatTable), "Output format: table, csv, json or yaml")
	return cmd
}
