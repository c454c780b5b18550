package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jbweber/corral/internal/alias"
	"github.com/jbweber/corral/internal/cli"
	"github.com/jbweber/corral/internal/config"
	"github.com/jbweber/corral/internal/exitcode"
	"github.com/jbweber/corral/internal/logging"
	"github.com/jbweber/corral/internal/rpc"
	"github.com/jbweber/corral/internal/settings"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return int(exitcode.CommandFail)
	}

	client, err := rpc.Dial(cfg.ServerAddress, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(exitcode.CommandFail)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close daemon connection: %v\n", closeErr)
		}
	}()

	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine home directory: %v\n", err)
		return int(exitcode.CommandFail)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Run(ctx, cli.Deps{
		Prog:          filepath.Base(os.Args[0]),
		Args:          os.Args[1:],
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		In:            os.Stdin,
		Out:           os.Stdout,
		Err:           os.Stderr,
		Daemon:        client,
		LocalSettings: settings.NewFileStore(cfg.SettingsPath()),
		Aliases:       alias.NewConfig(cfg.DataDir, alias.WithLogger(logging.New(os.Stderr, 0))),
		Scripts:       alias.NewShellScripts(cfg.AliasScriptsDir, exe),
		Home:          home,
	})
}
