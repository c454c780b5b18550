package vm

import (
	"context"
	"strconv"
	"strings"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/exitcode"
)

// StopOptions controls a stop: a delay in minutes, or cancelling a
// pending delayed stop.
type StopOptions struct {
	Minutes int
	Cancel  bool
}

// ParseStopOptions validates the stop --time and --cancel flags. An empty
// delay means stop now; a leading '+' is accepted.
func ParseStopOptions(delay string, cancel bool) (StopOptions, error) {
	if delay != "" && cancel {
		return StopOptions{}, exitcode.Usagef("Cannot set 'time' and 'cancel' options at the same time")
	}
	if delay == "" {
		return StopOptions{Cancel: cancel}, nil
	}

	minutes, err := strconv.Atoi(strings.TrimPrefix(delay, "+"))
	if err != nil || minutes < 0 {
		return StopOptions{}, exitcode.Usagef("Time must be in digit form")
	}
	return StopOptions{Minutes: minutes}, nil
}

// Start starts targets. When the primary instance is the only missing
// target it is launched first.
func (r *Runner) Start(ctx context.Context, targets []string, petenv string) error {
	return r.runPrimary(ctx, primaryCall{
		command: "start",
		targets: targets,
		petenv:  petenv,
		call: func(ctx context.Context) error {
			_, err := r.Daemon.Start(ctx, &v1alpha1.StartRequest{InstanceNames: targets})
			return err
		},
	})
}

// Stop stops targets.
func (r *Runner) Stop(ctx context.Context, targets []string, opts StopOptions) error {
	_, err := r.Daemon.Stop(ctx, &v1alpha1.StopRequest{
		InstanceNames:  targets,
		TimeMinutes:    opts.Minutes,
		CancelShutdown: opts.Cancel,
	})
	return callError("stop", targets, err)
}

// Suspend suspends targets.
func (r *Runner) Suspend(ctx context.Context, targets []string) error {
	_, err := r.Daemon.Suspend(ctx, &v1alpha1.SuspendRequest{InstanceNames: targets})
	return callError("suspend", targets, err)
}

// Restart restarts targets.
func (r *Runner) Restart(ctx context.Context, targets []string) error {
	_, err := r.Daemon.Restart(ctx, &v1alpha1.RestartRequest{InstanceNames: targets})
	return callError("restart", targets, err)
}

// Delete deletes targets. Purged instances cannot be recovered.
func (r *Runner) Delete(ctx context.Context, targets []string, purge bool) error {
	reply, err := r.Daemon.Delete(ctx, &v1alpha1.DeleteRequest{InstanceNames: targets, Purge: purge})
	if err != nil {
		return callError("delete", targets, err)
	}
	if len(reply.PurgedInstances) > 0 {
		r.Log.Info().Strs("instances", reply.PurgedInstances).Msg("purged instances")
	}
	return nil
}
