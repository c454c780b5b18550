package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/corral/internal/output"
	"github.com/jbweber/corral/internal/vm"
)

func (a *app) infoCommand() *cobra.Command {
	var (
		all       bool
		format    string
		noRuntime bool
	)

	cmd := &cobra.Command{
		Use:   "info <name> [name ...]",
		Short: "Display information about instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.NewFormatter(format)
			if err != nil {
				return err
			}
			targets, err := vm.ResolveExplicitTargets(args, all)
			if err != nil {
				return err
			}

			reply, err := a.runner.Info(cmd.Context(), targets, noRuntime)
			if err != nil {
				return err
			}
			out, err := f.FormatInfo(reply.Info)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Display info for all instances")
	cmd.Flags().StringVar(&format, "format", string(output.FormatTable), "Output format: table, csv, json or yaml")
	cmd.Flags().BoolVar(&noRuntime, "no-runtime-information", false, "Skip usage figures that require querying the instance")
	return cmd
}

func (a *app) listCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all instances",
		Args:    usageArgs(cobra.NoArgs, "This command takes no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := output.NewFormatter(format)
			if err != nil {
				return err
			}

			reply, err := a.runner.List(cmd.Context())
			if err != nil {
				return err
			}
			out, err := f.FormatList(reply.Instances)
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

func (a *app) versionCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show client and daemon versions",
		Long: `Show the client version and, when the daemon can be reached, the
daemon version.`,
		Args: usageArgs(cobra.NoArgs, "This command takes no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := output.NewFormatter(format)
			if err != nil {
				return err
			}

			daemon, err := a.runner.DaemonVersion(cmd.Context())
			if err != nil {
				a.log.Debug().Err(err).Msg("daemon version unavailable")
				daemon = ""
			}
			out, err := f.FormatVersion(a.deps.Version, daemon)
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
