package vm

import (
	"context"

	"github.com/jbweber/corral/api/v1alpha1"
)

// Info returns details for targets; an empty list means every instance.
func (r *Runner) Info(ctx context.Context, targets []string, noRuntimeInfo bool) (*v1alpha1.InfoReply, error) {
	reply, err := r.Daemon.Info(ctx, &v1alpha1.InfoRequest{
		InstanceNames:        targets,
		NoRuntimeInformation: noRuntimeInfo,
	})
	if err != nil {
		return nil, callError("info", targets, err)
	}
	return reply, nil
}

// List returns a summary of every instance.
func (r *Runner) List(ctx context.Context) (*v1alpha1.ListReply, error) {
	reply, err := r.Daemon.List(ctx, &v1alpha1.ListRequest{})
	if err != nil {
		return nil, callError("list", nil, err)
	}
	return reply, nil
}

// DaemonVersion returns the daemon's version string.
func (r *Runner) DaemonVersion(ctx context.Context) (string, error) {
	reply, err := r.Daemon.Version(ctx, &v1alpha1.VersionRequest{})
	if err != nil {
		return "", callError("version", nil, err)
	}
	return reply.Version, nil
}
