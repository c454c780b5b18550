package cli

import (
	"github.com/spf13/cobra"

	"github.com/jbweber/corral/internal/cloudinit"
	"github.com/jbweber/corral/internal/vm"
)

func (a *app) launchCommand() *cobra.Command {
	var (
		opts      vm.LaunchOptions
		cloudInit string
	)

	cmd := &cobra.Command{
		Use:   "launch [image]",
		Short: "Create and start an instance",
		Long: `Create and start a new instance.

When no name is given the daemon picks one. Launching the primary
instance by name also mounts your home directory into it.`,
		Args: usageArgs(cobra.MaximumNArgs(1), "Too many arguments supplied"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Image = args[0]
			}
			if cloudInit != "" {
				userData, err := cloudinit.Load(cloudInit, cmd.InOrStdin())
				if err != nil {
					return err
				}
				opts.CloudInit = userData
			}
			petenv, err := a.petEnv(cmd.Context())
			if err != nil {
				return err
			}
			return a.runner.Launch(cmd.Context(), opts, petenv)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Name for the instance")
	cmd.Flags().IntVarP(&opts.CPUs, "cpus", "c", 0, "Number of CPUs to allocate")
	cmd.Flags().StringVarP(&opts.Memory, "memory", "m", "", "Amount of memory to allocate, e.g. 2G")
	cmd.Flags().StringVarP(&opts.Disk, "disk", "d", "", "Disk space to allocate, e.g. 10G")
	cmd.Flags().StringVar(&cloudInit, "cloud-init", "", "Path to a cloud-init user-data file, or '-' for stdin")
	return cmd
}

func (a *app) startCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "start [name ...]",
		Short: "Start instances",
		Long: `Start the named instances, or the primary instance when none is named.

A missing primary instance is launched first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			petenv, err := a.petEnv(cmd.Context())
			if err != nil {
				return err
			}
			targets, err := vm.ResolveTargets(args, all, petenv)
			if err != nil {
				return err
			}
			return a.runner.Start(cmd.Context(), targets, petenv)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Start all instances")
	return cmd
}

func (a *app) stopCommand() *cobra.Command {
	var (
		all    bool
		delay  string
		cancel bool
	)

	cmd := &cobra.Command{
		Use:   "stop [name ...]",
		Short: "Stop running instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := vm.ParseStopOptions(delay, cancel)
			if err != nil {
				return err
			}
			petenv, err := a.petEnv(cmd.Context())
			if err != nil {
				return err
			}
			targets, err := vm.ResolveTargets(args, all, petenv)
			if err != nil {
				return err
			}
			return a.runner.Stop(cmd.Context(), targets, opts)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Stop all instances")
	cmd.Flags().StringVarP(&delay, "time", "t", "", "Minutes to wait before stopping, e.g. +10")
	cmd.Flags().BoolVarP(&cancel, "cancel", "c", false, "Cancel a pending delayed stop")
	return cmd
}

// targetsCommand builds a command that resolves its targets like start and
// hands them to run.
func (a *app) targetsCommand(use, short string, run func(cmd *cobra.Command, targets []string) error) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   use + " [name ...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			petenv, err := a.petEnv(cmd.Context())
			if err != nil {
				return err
			}
			targets, err := vm.ResolveTargets(args, all, petenv)
			if err != nil {
				return err
			}
			return run(cmd, targets)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Apply to all instances")
	return cmd
}

func (a *app) suspendCommand() *cobra.Command {
	return a.targetsCommand("suspend", "Suspend running instances", func(cmd *cobra.Command, targets []string) error {
		return a.runner.Suspend(cmd.Context(), targets)
	})
}

func (a *app) restartCommand() *cobra.Command {
	return a.targetsCommand("restart", "Restart instances", func(cmd *cobra.Command, targets []string) error {
		return a.runner.Restart(cmd.Context(), targets)
	})
}

func (a *app) deleteCommand() *cobra.Command {
	var all, purge bool

	cmd := &cobra.Command{
		Use:   "delete <name> [name ...]",
		Short: "Delete instances",
		Long: `Delete the named instances. Deleted instances can be recovered until
they are purged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := vm.ResolveExplicitTargets(args, all)
			if err != nil {
				return err
			}
			return a.runner.Delete(cmd.Context(), targets, purge)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Delete all instances")
	cmd.Flags().BoolVarP(&purge, "purge", "p", false, "Permanently remove the deleted instances")
	return cmd
}
