package vm

import (
	"context"
	"fmt"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/exitcode"
	"github.com/jbweber/corral/internal/naming"
)

// LaunchOptions describes a new instance. Zero values leave the choice to
// the daemon.
type LaunchOptions struct {
	Name   string
	Image  string
	CPUs   int
	Memory string
	Disk   string
	// CloudInit is rendered cloud-config user-data.
	CloudInit string
}

// Launch creates and starts an instance. Launching the primary instance by
// name also mounts the user's home directory into it.
func (r *Runner) Launch(ctx context.Context, opts LaunchOptions, petenv string) error {
	if opts.Name != "" {
		if err := naming.ValidInstanceName(opts.Name); err != nil {
			return exitcode.Usagef("%s", err)
		}
	}
	if opts.CPUs < 0 {
		return exitcode.Usagef("error: Invalid CPU count '%d', need a positive integer value.", opts.CPUs)
	}

	var targets []string
	if opts.Name != "" {
		targets = []string{opts.Name}
	}

	r.Log.Debug().Str("instance", opts.Name).Str("image", opts.Image).Msg("launching instance")
	reply, err := r.Daemon.Launch(ctx, &v1alpha1.LaunchRequest{
		InstanceName: opts.Name,
		Image:        opts.Image,
		NumCores:     opts.CPUs,
		MemSize:      opts.Memory,
		DiskSpace:    opts.Disk,

		CloudInitUserData: opts.CloudInit,
	})
	if err != nil {
		return callError("launch", targets, err)
	}

	name := reply.VMInstanceName
	if name == "" {
		name = opts.Name
	}
	if reply.ReplyMessage != "" {
		_, _ = fmt.Fprintln(r.Out, reply.ReplyMessage)
	}
	_, _ = fmt.Fprintf(r.Out, "Launched: %s\n", name)

	if petenv != "" && name == petenv {
		return r.automount(ctx, "launch", name)
	}
	return nil
}
