package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbweber/corral/internal/alias"
	"github.com/jbweber/corral/internal/exitcode"
	"github.com/jbweber/corral/internal/sshclient"
	"github.com/jbweber/corral/internal/vm"
)

func (a *app) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [name]",
		Short: "Open a shell on an instance",
		Long: `Open an interactive shell on the named instance, or on the primary
instance when none is named.

A missing primary instance is launched, and a stopped or suspended
instance is started, before connecting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			petenv, err := a.petEnv(cmd.Context())
			if err != nil {
				return err
			}
			instance, err := vm.ResolveSingleTarget(args, petenv)
			if err != nil {
				return err
			}

			sess, err := a.connect(cmd.Context(), "shell", instance, petenv)
			if err != nil {
				return err
			}
			return sess.Shell(cmd.Context(), a.streams(cmd))
		},
	}
}

func (a *app) execCommand() *cobra.Command {
	var (
		workDir         string
		aliasInvocation bool
	)

	cmd := &cobra.Command{
		Use:   "exec <name> [--] <command> [args ...]",
		Short: "Run a command on an instance",
		Long: `Run a command on the named instance. Options meant for the command
must follow "--".`,
		Args: usageArgs(cobra.MinimumNArgs(2), "Wrong number of arguments"),
		RunE: func(cmd *cobra.Command, args []string) error {
			instance, command := args[0], args[1:]
			ctx := cmd.Context()

			if workDir == "" && aliasInvocation {
				if cwd, err := a.deps.Getwd(); err != nil {
					a.log.Debug().Err(err).Msg("cannot determine working directory")
				} else if dir, ok := a.runner.MountedWorkDir(ctx, instance, cwd); ok {
					workDir = dir
				}
			}

			petenv, err := a.petEnv(ctx)
			if err != nil {
				return err
			}
			sess, err := a.connect(ctx, "exec", instance, petenv)
			if err != nil {
				return err
			}
			return sess.Exec(ctx, command, workDir, a.streams(cmd))
		},
	}

	cmd.Flags().StringVarP(&workDir, "working-directory", "d", "", "Directory on the instance to run the command in")
	cmd.Flags().BoolVar(&aliasInvocation, alias.InvocationFlag[2:], false, "Run on behalf of an alias")
	_ = cmd.Flags().MarkHidden(alias.InvocationFlag[2:])
	return cmd
}

// connect asks the daemon for connection details, provisioning the
// instance when needed, and opens a session to it.
func (a *app) connect(ctx context.Context, command, instance, petenv string) (Session, error) {
	info, err := a.runner.SSHInfo(ctx, command, instance, petenv)
	if err != nil {
		return nil, err
	}
	sess, err := a.deps.NewSession(info, a.log)
	if err != nil {
		return nil, exitcode.Fail(exitcode.CommandFail, fmt.Errorf("%s failed: %w", command, err))
	}
	return sess, nil
}

func (a *app) streams(cmd *cobra.Command) sshclient.Streams {
	return sshclient.Streams{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	}
}
