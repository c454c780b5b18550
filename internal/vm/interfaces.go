package vm

import (
	"context"

	"github.com/jbweber/corral/api/v1alpha1"
)

// daemonClient defines the daemon operations needed for instance commands.
//
// In production, this is satisfied by rpc.DaemonClient wrapped with
// dispatch.Wrap so that every call carries the command's verbosity and
// timeout. In tests, this is satisfied by mock implementations.
type daemonClient interface {
	// Launch creates and starts a new instance
	Launch(ctx context.Context, req *v1alpha1.LaunchRequest) (*v1alpha1.LaunchReply, error)

	// Mount shares a host path with instances
	Mount(ctx context.Context, req *v1alpha1.MountRequest) (*v1alpha1.MountReply, error)

	// Info returns instance details
	Info(ctx context.Context, req *v1alpha1.InfoRequest) (*v1alpha1.InfoReply, error)

	// List returns instance summaries
	List(ctx context.Context, req *v1alpha1.ListRequest) (*v1alpha1.ListReply, error)

	// Start starts instances
	Start(ctx context.Context, req *v1alpha1.StartRequest) (*v1alpha1.StartReply, error)

	// Stop stops instances
	Stop(ctx context.Context, req *v1alpha1.StopRequest) (*v1alpha1.StopReply, error)

	// Suspend suspends instances
	Suspend(ctx context.Context, req *v1alpha1.SuspendRequest) (*v1alpha1.SuspendReply, error)

	// Restart restarts instances
	Restart(ctx context.Context, req *v1alpha1.RestartRequest) (*v1alpha1.RestartReply, error)

	// Delete deletes instances
	Delete(ctx context.Context, req *v1alpha1.DeleteRequest) (*v1alpha1.DeleteReply, error)

	// SSHInfo returns connection details for running instances
	SSHInfo(ctx context.Context, req *v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error)

	// Version returns the daemon version
	Version(ctx context.Context, req *v1alpha1.VersionRequest) (*v1alpha1.VersionReply, error)
}

// settingsReader reads settings values.
//
// In production, this is satisfied by *settings.Registry with the remote
// handler registered, so daemon-owned keys reach the daemon.
type settingsReader interface {
	Get(ctx context.Context, key string) (string, error)
}
