// Package cli implements the corral command tree.
//
// Run is the whole life of one invocation: the daemon settings handler is
// registered, alias invocations are rewritten into exec, the command runs,
// and its outcome is mapped onto an exit code.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/alias"
	"github.com/jbweber/corral/internal/dispatch"
	"github.com/jbweber/corral/internal/exitcode"
	"github.com/jbweber/corral/internal/logging"
	"github.com/jbweber/corral/internal/rpc"
	"github.com/jbweber/corral/internal/settings"
	"github.com/jbweber/corral/internal/sshclient"
	"github.com/jbweber/corral/internal/vm"
)

// Session runs a shell or a command on an instance.
type Session interface {
	Shell(ctx context.Context, s sshclient.Streams) error
	Exec(ctx context.Context, args []string, workDir string, s sshclient.Streams) error
}

// Deps are the process-level collaborators of a single invocation.
type Deps struct {
	// Prog is the program name shown in messages.
	Prog string
	// Args are the command line arguments without the program name.
	Args []string
	// Version is the client version.
	Version string

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Daemon is the undecorated daemon client.
	Daemon rpc.DaemonClient
	// LocalSettings owns every key the daemon does not.
	LocalSettings settings.Handler

	Aliases alias.Store
	Scripts alias.ScriptManager

	// Home is mounted into a freshly launched primary instance.
	Home   string
	Getenv func(key string) string
	Getwd  func() (string, error)

	// NewSession connects to an instance. Defaults to an SSH client.
	NewSession func(info v1alpha1.SSHInfo, log zerolog.Logger) (Session, error)

	// DispatchOptions are passed on to dispatch.Wrap.
	DispatchOptions []dispatch.Option
}

type app struct {
	deps     Deps
	registry *settings.Registry

	verbosity  int
	timeoutRaw string

	log    zerolog.Logger
	daemon rpc.DaemonClient
	runner *vm.Runner
}

// Run executes one command line and returns the process exit code.
func Run(ctx context.Context, d Deps) int {
	if d.Getenv == nil {
		d.Getenv = os.Getenv
	}
	if d.Getwd == nil {
		d.Getwd = os.Getwd
	}
	if d.NewSession == nil {
		d.NewSession = func(info v1alpha1.SSHInfo, log zerolog.Logger) (Session, error) {
			return sshclient.New(info, sshclient.DefaultTimeout, log)
		}
	}

	a := &app{
		deps:     d,
		registry: settings.NewRegistry(d.LocalSettings),
		log:      zerolog.Nop(),
	}

	remote := settings.NewRemoteHandler(remoteSettings{a})
	release := a.registry.Register(remote.Claims, remote)
	defer release()

	root := a.rootCommand()

	dict, err := d.Aliases.Load()
	if err != nil {
		return a.report(err)
	}
	global, rest := splitGlobalFlags(root, d.Args)
	rest, err = alias.Rewrite(d.Prog, rest, builtins(root), dict)
	if err != nil {
		return a.report(err)
	}
	args := append(global, rest...)

	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetIn(d.In)
	root.SetOut(d.Out)
	root.SetErr(d.Err)
	return a.report(root.ExecuteContext(ctx))
}

// report prints err and returns the exit code for it.
func (a *app) report(err error) int {
	if err == nil {
		return int(exitcode.Ok)
	}
	if exitcode.IsQuiet(err) {
		return int(exitcode.Of(err))
	}

	_, _ = fmt.Fprintln(a.deps.Err, err.Error())
	return int(exitcode.Of(err))
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   a.deps.Prog,
		Short: "Corral - manage instances through the corral daemon",
		Long: `Corral is the command line client of the corral daemon.

It launches and manages instances, opens shells in them, and runs
commands in them through user defined aliases.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitcode.Usagef("%s", err)
	})

	root.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Increase logging verbosity, repeat for more detail")
	root.PersistentFlags().StringVar(&a.timeoutRaw, "timeout", "", "Maximum time, in seconds, to wait for the daemon")

	root.AddCommand(
		a.launchCommand(),
		a.startCommand(),
		a.stopCommand(),
		a.suspendCommand(),
		a.restartCommand(),
		a.deleteCommand(),
		a.shellCommand(),
		a.execCommand(),
		a.infoCommand(),
		a.listCommand(),
		a.getCommand(),
		a.setCommand(),
		a.aliasCommand(),
		a.unaliasCommand(),
		a.aliasesCommand(),
		a.versionCommand(),
	)
	return root
}

// setup runs once flags are parsed: it builds the logger and the
// timeout-bounded daemon client used by every command.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	timeout := 0
	if cmd.Flags().Changed("timeout") {
		t, err := dispatch.ParseTimeout(a.timeoutRaw)
		if err != nil {
			return err
		}
		timeout = t
	}

	a.log = logging.New(a.deps.Err, a.verbosity)

	options := append([]dispatch.Option{
		dispatch.WithLogger(a.log),
		dispatch.WithErrorOutput(a.deps.Err),
	}, a.deps.DispatchOptions...)
	a.daemon = dispatch.Wrap(a.deps.Daemon, dispatch.Options{Verbosity: a.verbosity, Timeout: timeout}, options...)

	a.runner = &vm.Runner{
		Daemon:   a.daemon,
		Settings: a.registry,
		Home:     a.deps.Home,
		Out:      cmd.OutOrStdout(),
		Log:      a.log,
	}
	return nil
}

func (a *app) petEnv(ctx context.Context) (string, error) {
	return settings.PetEnv(ctx, a.registry)
}

// builtins reports whether name is a command or command alias of root.
func builtins(root *cobra.Command) func(string) bool {
	names := map[string]struct{}{"help": {}, "completion": {}}
	for _, c := range root.Commands() {
		names[c.Name()] = struct{}{}
		for _, al := range c.Aliases {
			names[al] = struct{}{}
		}
	}
	return func(name string) bool {
		_, ok := names[name]
		return ok
	}
}

// splitGlobalFlags separates the root's persistent flags given ahead of the
// command word, along with their values, from the rest of args.
func splitGlobalFlags(root *cobra.Command, args []string) (global, rest []string) {
	flags := root.PersistentFlags()
	i := 0
	for i < len(args) {
		tok := args[i]
		if tok == "--" || !strings.HasPrefix(tok, "-") || tok == "-" {
			break
		}
		i++
		if strings.Contains(tok, "=") {
			continue
		}

		var takesValue bool
		if name, ok := strings.CutPrefix(tok, "--"); ok {
			f := flags.Lookup(name)
			takesValue = f != nil && f.NoOptDefVal == ""
		} else {
			short := tok[len(tok)-1:]
			f := flags.ShorthandLookup(short)
			takesValue = f != nil && f.NoOptDefVal == "" && len(tok) == 2
		}
		if takesValue && i < len(args) {
			i++
		}
	}
	return args[:i:i], args[i:]
}

// remoteSettings hands daemon-owned settings calls to the bounded client
// built for the current command.
type remoteSettings struct {
	a *app
}

func (r remoteSettings) client() (rpc.DaemonClient, error) {
	if r.a.daemon == nil {
		return nil, errors.New("daemon client used before command setup")
	}
	return r.a.daemon, nil
}

func (r remoteSettings) Get(ctx context.Context, req *v1alpha1.GetRequest) (*v1alpha1.GetReply, error) {
	c, err := r.client()
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, req)
}

func (r remoteSettings) Set(ctx context.Context, req *v1alpha1.SetRequest) (*v1alpha1.SetReply, error) {
	c, err := r.client()
	if err != nil {
		return nil, err
	}
	return c.Set(ctx, req)
}

func (r remoteSettings) Keys(ctx context.Context, req *v1alpha1.KeysRequest) (*v1alpha1.KeysReply, error) {
	c, err := r.client()
	if err != nil {
		return nil, err
	}
	return c.Keys(ctx, req)
}

// usageArgs wraps a cobra positional args validator so that its failure
// is reported as a command line error with msg.
func usageArgs(check cobra.PositionalArgs, msg string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return exitcode.Usagef("%s", msg)
		}
		return nil
	}
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
