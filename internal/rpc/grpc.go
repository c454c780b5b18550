package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jbweber/corral/api/v1alpha1"
)

// ServiceName is the fully qualified gRPC service implemented by the daemon.
const ServiceName = "corral.v1alpha1.Rpc"

// DialError wraps a failure to set up the client connection.
type DialError struct {
	Addr string
	Err  error
}

// Error implements the error interface.
func (e *DialError) Error() string {
	return fmt.Sprintf("cannot connect to the corral socket %s: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying error.
func (e *DialError) Unwrap() error {
	return e.Err
}

// GRPCClient implements DaemonClient over a gRPC connection.
type GRPCClient struct {
	conn   grpc.ClientConnInterface
	closer io.Closer
	logs   io.Writer
}

// Dial creates a client for the daemon listening at addr.
// Daemon log lines carried in replies are written to logs when non-nil.
//
// The connection is established lazily on the first call.
func Dial(addr string, logs io.Writer, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, &DialError{Addr: addr, Err: err}
	}

	c := NewGRPCClient(conn, logs)
	c.closer = conn
	return c, nil
}

// NewGRPCClient wraps an existing connection.
func NewGRPCClient(conn grpc.ClientConnInterface, logs io.Writer) *GRPCClient {
	return &GRPCClient{conn: conn, logs: logs}
}

// Close releases the underlying connection if this client owns it.
func (c *GRPCClient) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

type logLiner interface {
	GetLogLine() string
}

// call sends req on a server stream and drains replies until the terminal
// status. The last reply received is returned. Replies are never nil on
// success, even when the daemon sent none.
func call[Rep any, PRep interface {
	*Rep
	logLiner
}](ctx context.Context, c *GRPCClient, method string, req v1alpha1.Request) (*Rep, error) {
	desc := &grpc.StreamDesc{StreamName: method, ServerStreams: true}
	stream, err := c.conn.NewStream(ctx, desc, "/"+ServiceName+"/"+method, grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, err
	}

	// io.EOF from SendMsg means the server already finished; the real
	// status is returned by RecvMsg below.
	if err := stream.SendMsg(req); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}

	var last *Rep
	for {
		reply := PRep(new(Rep))
		err := stream.RecvMsg(reply)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return last, err
		}
		if line := reply.GetLogLine(); line != "" && c.logs != nil {
			_, _ = fmt.Fprint(c.logs, line)
		}
		last = (*Rep)(reply)
	}

	if last == nil {
		last = new(Rep)
	}
	return last, nil
}

// Launch implements DaemonClient.
func (c *GRPCClient) Launch(ctx context.Context, req *v1alpha1.LaunchRequest) (*v1alpha1.LaunchReply, error) {
	return call[v1alpha1.LaunchReply](ctx, c, "launch", req)
}

// Mount implements DaemonClient.
func (c *GRPCClient) Mount(ctx context.Context, req *v1alpha1.MountRequest) (*v1alpha1.MountReply, error) {
	return call[v1alpha1.MountReply](ctx, c, "mount", req)
}

// Info implements DaemonClient.
func (c *GRPCClient) Info(ctx context.Context, req *v1alpha1.InfoRequest) (*v1alpha1.InfoReply, error) {
	return call[v1alpha1.InfoReply](ctx, c, "info", req)
}

// List implements DaemonClient.
func (c *GRPCClient) List(ctx context.Context, req *v1alpha1.ListRequest) (*v1alpha1.ListReply, error) {
	return call[v1alpha1.ListReply](ctx, c, "list", req)
}

// Start implements DaemonClient.
func (c *GRPCClient) Start(ctx context.Context, req *v1alpha1.StartRequest) (*v1alpha1.StartReply, error) {
	return call[v1alpha1.StartReply](ctx, c, "start", req)
}

// Stop implements DaemonClient.
func (c *GRPCClient) Stop(ctx context.Context, req *v1alpha1.StopRequest) (*v1alpha1.StopReply, error) {
	return call[v1alpha1.StopReply](ctx, c, "stop", req)
}

// Suspend implements DaemonClient.
func (c *GRPCClient) Suspend(ctx context.Context, req *v1alpha1.SuspendRequest) (*v1alpha1.SuspendReply, error) {
	return call[v1alpha1.SuspendReply](ctx, c, "suspend", req)
}

// Restart implements DaemonClient.
func (c *GRPCClient) Restart(ctx context.Context, req *v1alpha1.RestartRequest) (*v1alpha1.RestartReply, error) {
	return call[v1alpha1.RestartReply](ctx, c, "restart", req)
}

// Delete implements DaemonClient.
func (c *GRPCClient) Delete(ctx context.Context, req *v1alpha1.DeleteRequest) (*v1alpha1.DeleteReply, error) {
	return call[v1alpha1.DeleteReply](ctx, c, "delete", req)
}

// SSHInfo implements DaemonClient.
func (c *GRPCClient) SSHInfo(ctx context.Context, req *v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
	return call[v1alpha1.SSHInfoReply](ctx, c, "ssh_info", req)
}

// Get implements DaemonClient.
func (c *GRPCClient) Get(ctx context.Context, req *v1alpha1.GetRequest) (*v1alpha1.GetReply, error) {
	return call[v1alpha1.GetReply](ctx, c, "get", req)
}

// Set implements DaemonClient.
func (c *GRPCClient) Set(ctx context.Context, req *v1alpha1.SetRequest) (*v1alpha1.SetReply, error) {
	return call[v1alpha1.SetReply](ctx, c, "set", req)
}

// Keys implements DaemonClient.
func (c *GRPCClient) Keys(ctx context.Context, req *v1alpha1.KeysRequest) (*v1alpha1.KeysReply, error) {
	return call[v1alpha1.KeysReply](ctx, c, "keys", req)
}

// Version implements DaemonClient.
func (c *GRPCClient) Version(ctx context.Context, req *v1alpha1.VersionRequest) (*v1alpha1.VersionReply, error) {
	return call[v1alpha1.VersionReply](ctx, c, "version", req)
}
