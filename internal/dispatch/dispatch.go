// Package dispatch stamps every daemon request with the command's verbosity
// and timeout, and bounds each call by the user supplied --timeout.
//
// When a call outlives the timeout, the process exits with
// exitcode.Timeout. The call itself is not cancelled on the daemon side;
// the client simply stops waiting.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/exitcode"
	"github.com/jbweber/corral/internal/rpc"
)

// ErrTimedOut is returned when the exit func returns instead of terminating
// the process, which only happens in tests.
var ErrTimedOut = errors.New("timed out waiting for the daemon")

// TimeoutUsage is the message for an invalid --timeout value.
const TimeoutUsage = "error: --timeout value has to be a positive integer"

// ParseTimeout validates a --timeout value and returns it in seconds.
func ParseTimeout(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, exitcode.Usagef("%s", TimeoutUsage)
	}
	return n, nil
}

// Options are the per-command values applied to every call.
type Options struct {
	// Verbosity is the number of -v flags.
	Verbosity int
	// Timeout is in seconds. Zero disables the bound.
	Timeout int
}

// Option configures the wrapper.
type Option func(*bounded)

// WithExit replaces os.Exit.
func WithExit(exit func(int)) Option {
	return func(b *bounded) { b.exit = exit }
}

// WithAfter replaces time.After as the timer source.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(b *bounded) { b.after = after }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *bounded) { b.log = log }
}

// WithErrorOutput sets where the timeout notice is written.
func WithErrorOutput(w io.Writer) Option {
	return func(b *bounded) { b.errOut = w }
}

type bounded struct {
	next   rpc.DaemonClient
	opts   Options
	id     string
	exit   func(int)
	after  func(time.Duration) <-chan time.Time
	log    zerolog.Logger
	errOut io.Writer
}

// Wrap decorates client so that every call carries opts and is bounded by
// opts.Timeout.
func Wrap(client rpc.DaemonClient, opts Options, options ...Option) rpc.DaemonClient {
	b := &bounded{
		next:   client,
		opts:   opts,
		id:     uuid.NewString(),
		exit:   os.Exit,
		after:  time.After,
		log:    zerolog.Nop(),
		errOut: os.Stderr,
	}
	for _, o := range options {
		o(b)
	}
	return b
}

type result[Rep any] struct {
	reply *Rep
	err   error
}

func run[Rep any](ctx context.Context, b *bounded, method string, req v1alpha1.Request, fn func(context.Context) (*Rep, error)) (*Rep, error) {
	meta := req.Meta()
	meta.VerbosityLevel = b.opts.Verbosity
	meta.Timeout = b.opts.Timeout

	b.log.Debug().
		Str("request_id", b.id).
		Str("method", method).
		Int("verbosity", b.opts.Verbosity).
		Int("timeout", b.opts.Timeout).
		Msg("calling daemon")

	if b.opts.Timeout <= 0 {
		reply, err := fn(ctx)
		b.logOutcome(method, err)
		return reply, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan result[Rep], 1)
	go func() {
		reply, err := fn(ctx)
		done <- result[Rep]{reply: reply, err: err}
	}()

	select {
	case r := <-done:
		b.logOutcome(method, r.err)
		return r.reply, r.err
	case <-b.after(time.Duration(b.opts.Timeout) * time.Second):
		b.log.Debug().Str("request_id", b.id).Str("method", method).Msg("timer fired before reply")
		_, _ = fmt.Fprintf(b.errOut, "Timed out waiting for %s to complete.\n", method)
		b.exit(int(exitcode.Timeout))
		return nil, ErrTimedOut
	}
}

func (b *bounded) logOutcome(method string, err error) {
	b.log.Debug().
		Str("request_id", b.id).
		Str("method", method).
		Stringer("outcome", rpc.Classify(err)).
		Msg("daemon call finished")
}

// Launch implements rpc.DaemonClient.
func (b *bounded) Launch(ctx context.Context, req *v1alpha1.LaunchRequest) (*v1alpha1.LaunchReply, error) {
	return run(ctx, b, "launch", req, func(ctx context.Context) (*v1alpha1.LaunchReply, error) {
		return b.next.Launch(ctx, req)
	})
}

// Mount implements rpc.DaemonClient.
func (b *bounded) Mount(ctx context.Context, req *v1alpha1.MountRequest) (*v1alpha1.MountReply, error) {
	return run(ctx, b, "mount", req, func(ctx context.Context) (*v1alpha1.MountReply, error) {
		return b.next.Mount(ctx, req)
	})
}

// Info implements rpc.DaemonClient.
func (b *bounded) Info(ctx context.Context, req *v1alpha1.InfoRequest) (*v1alpha1.InfoReply, error) {
	return run(ctx, b, "info", req, func(ctx context.Context) (*v1alpha1.InfoReply, error) {
		return b.next.Info(ctx, req)
	})
}

// List implements rpc.DaemonClient.
func (b *bounded) List(ctx context.Context, req *v1alpha1.ListRequest) (*v1alpha1.ListReply, error) {
	return run(ctx, b, "list", req, func(ctx context.Context) (*v1alpha1.ListReply, error) {
		return b.next.List(ctx, req)
	})
}

// Start implements rpc.DaemonClient.
func (b *bounded) Start(ctx context.Context, req *v1alpha1.StartRequest) (*v1alpha1.StartReply, error) {
	return run(ctx, b, "start", req, func(ctx context.Context) (*v1alpha1.StartReply, error) {
		return b.next.Start(ctx, req)
	})
}

// Stop implements rpc.DaemonClient.
func (b *bounded) Stop(ctx context.Context, req *v1alpha1.StopRequest) (*v1alpha1.StopReply, error) {
	return run(ctx, b, "stop", req, func(ctx context.Context) (*v1alpha1.StopReply, error) {
		return b.next.Stop(ctx, req)
	})
}

// Suspend implements rpc.DaemonClient.
func (b *bounded) Suspend(ctx context.Context, req *v1alpha1.SuspendRequest) (*v1alpha1.SuspendReply, error) {
	return run(ctx, b, "suspend", req, func(ctx context.Context) (*v1alpha1.SuspendReply, error) {
		return b.next.Suspend(ctx, req)
	})
}

// Restart implements rpc.DaemonClient.
func (b *bounded) Restart(ctx context.Context, req *v1alpha1.RestartRequest) (*v1alpha1.RestartReply, error) {
	return run(ctx, b, "restart", req, func(ctx context.Context) (*v1alpha1.RestartReply, error) {
		return b.next.Restart(ctx, req)
	})
}

// Delete implements rpc.DaemonClient.
func (b *bounded) Delete(ctx context.Context, req *v1alpha1.DeleteRequest) (*v1alpha1.DeleteReply, error) {
	return run(ctx, b, "delete", req, func(ctx context.Context) (*v1alpha1.DeleteReply, error) {
		return b.next.Delete(ctx, req)
	})
}

// SSHInfo implements rpc.DaemonClient.
func (b *bounded) SSHInfo(ctx context.Context, req *v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
	return run(ctx, b, "ssh_info", req, func(ctx context.Context) (*v1alpha1.SSHInfoReply, error) {
		return b.next.SSHInfo(ctx, req)
	})
}

// Get implements rpc.DaemonClient.
func (b *bounded) Get(ctx context.Context, req *v1alpha1.GetRequest) (*v1alpha1.GetReply, error) {
	return run(ctx, b, "get", req, func(ctx context.Context) (*v1alpha1.GetReply, error) {
		return b.next.Get(ctx, req)
	})
}

// Set implements rpc.DaemonClient.
func (b *bounded) Set(ctx context.Context, req *v1alpha1.SetRequest) (*v1alpha1.SetReply, error) {
	return run(ctx, b, "set", req, func(ctx context.Context) (*v1alpha1.SetReply, error) {
		return b.next.Set(ctx, req)
	})
}

// Keys implements rpc.DaemonClient.
func (b *bounded) Keys(ctx context.Context, req *v1alpha1.KeysRequest) (*v1alpha1.KeysReply, error) {
	return run(ctx, b, "keys", req, func(ctx context.Context) (*v1alpha1.KeysReply, error) {
		return b.next.Keys(ctx, req)
	})
}

// Version implements rpc.DaemonClient.
func (b *bounded) Version(ctx context.Context, req *v1alpha1.VersionRequest) (*v1alpha1.VersionReply, error) {
	return run(ctx, b, "version", req, func(ctx context.Context) (*v1alpha1.VersionReply, error) {
		return b.next.Version(ctx, req)
	})
}
