package alias

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/exitcode"
	"github.com/jbweber/corral/internal/naming"
)

// Store is the persistent alias store.
//
// In production, this is satisfied by *Config.
type Store interface {
	Load() (*Dict, error)
	Save(d *Dict) error
}

// instanceLister checks that an alias target exists.
type instanceLister interface {
	Info(ctx context.Context, req *v1alpha1.InfoRequest) (*v1alpha1.InfoReply, error)
}

// Manager implements the alias and unalias commands.
type Manager struct {
	Store   Store
	Scripts ScriptManager
	Daemon  instanceLister

	// IsBuiltin reports whether a name is taken by a command or command alias.
	IsBuiltin func(name string) bool

	// Getenv reads the environment; PATH decides whether to print the
	// scripts directory notice.
	Getenv func(key string) string

	Out    io.Writer
	ErrOut io.Writer
	Log    zerolog.Logger
}

// Create defines an alias from "alias <instance>:<command> [name]" arguments.
func (m *Manager) Create(ctx context.Context, args []string) error {
	if len(args) != 1 && len(args) != 2 {
		return exitcode.Usagef("Wrong number of arguments given")
	}

	instance, command := naming.SplitDefinition(args[0])
	if instance == "" {
		return exitcode.Usagef("No instance name given")
	}
	if command == "" {
		return exitcode.Usagef("No command given")
	}

	name := naming.DefaultAliasName(command)
	if len(args) == 2 {
		name = args[1]
	}
	if !naming.ValidAliasName(name) {
		return exitcode.Usagef("Alias has to be a valid filename")
	}
	if m.IsBuiltin != nil && m.IsBuiltin(name) {
		return exitcode.Usagef("Alias name '%s' clashes with a command name", name)
	}

	dict, err := m.Store.Load()
	if err != nil {
		return err
	}
	if _, ok := dict.Get(name); ok {
		return exitcode.Usagef("Alias '%s' already exists", name)
	}

	if err := m.checkInstance(ctx, instance); err != nil {
		return err
	}

	previous := dict.Clone()
	wasEmpty := dict.Len() == 0
	def := Definition{Instance: instance, Command: command}
	dict.Add(name, def)

	m.Log.Debug().Str("alias", name).Str("instance", instance).Str("command", command).Msg("saving alias")
	if err := m.Store.Save(dict); err != nil {
		return err
	}

	if err := m.Scripts.Create(name, def); err != nil {
		if restoreErr := m.Store.Save(previous); restoreErr != nil {
			m.Log.Warn().Err(restoreErr).Str("alias", name).Msg("failed to restore aliases after script failure")
			return fmt.Errorf("Error when creating script for alias: %w; alias '%s' is still saved: %v", err, name, restoreErr)
		}
		return fmt.Errorf("Error when creating script for alias: %w", err)
	}

	if wasEmpty && !m.scriptsDirOnPath() {
		_, _ = fmt.Fprintf(m.Out, "You'll need to add %s to your PATH in order to use the created aliases.\n", m.Scripts.Dir())
	}
	return nil
}

// checkInstance verifies instance exists with a single-instance info call.
func (m *Manager) checkInstance(ctx context.Context, instance string) error {
	reply, err := m.Daemon.Info(ctx, &v1alpha1.InfoRequest{
		InstanceNames:        []string{instance},
		NoRuntimeInformation: true,
	})
	if err != nil {
		switch status.Code(err) {
		case codes.NotFound, codes.InvalidArgument:
			return exitcode.Usagef("Instance '%s' does not exist", instance)
		default:
			m.Log.Debug().Err(err).Msg("info call failed")
			return errors.New("Error retrieving list of instances")
		}
	}
	for _, info := range reply.Info {
		if info.Name == instance {
			return nil
		}
	}
	return exitcode.Usagef("Instance '%s' does not exist", instance)
}

func (m *Manager) scriptsDirOnPath() bool {
	if m.Getenv == nil {
		return false
	}
	dir := filepath.Clean(m.Scripts.Dir())
	for _, p := range strings.Split(m.Getenv("PATH"), string(filepath.ListSeparator)) {
		if p != "" && filepath.Clean(p) == dir {
			return true
		}
	}
	return false
}

// Remove deletes an alias from "unalias <name>" arguments. A failure to
// remove the script is reported as a warning and does not stop removal.
func (m *Manager) Remove(args []string) error {
	if len(args) != 1 {
		return exitcode.Usagef("Wrong number of arguments given")
	}
	name := args[0]

	dict, err := m.Store.Load()
	if err != nil {
		return err
	}
	if _, ok := dict.Get(name); !ok {
		return exitcode.Usagef("Alias '%s' does not exist", name)
	}

	if err := m.Scripts.Remove(name); err != nil {
		_, _ = fmt.Fprintf(m.ErrOut, "Warning: '%s' when removing alias script for %s\n", err.Error(), name)
	}

	dict.Remove(name)
	return m.Store.Save(dict)
}
