package vm

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/naming"
	"github.com/jbweber/corral/internal/rpc"
	"github.com/jbweber/corral/internal/settings"
)

// primaryCall is a command's main daemon call.
type primaryCall struct {
	command string
	targets []string
	petenv  string

	// startOnAborted starts the targets when the call is aborted without
	// per-instance detail, which the daemon uses for stopped or suspended
	// instances in ssh_info.
	startOnAborted bool

	call func(ctx context.Context) error
}

type recovery int

const (
	recoverNone recovery = iota
	recoverLaunch
	recoverStart
)

// runPrimary issues p and, when the failure can be recovered, recovers and
// issues it exactly once more.
func (r *Runner) runPrimary(ctx context.Context, p primaryCall) error {
	err := p.call(ctx)
	if err == nil {
		return nil
	}

	switch p.recoveryFor(err) {
	case recoverLaunch:
		r.Log.Info().Str("command", p.command).Str("instance", p.petenv).Msg("primary instance does not exist, launching it")
		if err := r.launchPetEnv(ctx, p.command, p.petenv); err != nil {
			return err
		}
	case recoverStart:
		r.Log.Info().Str("command", p.command).Strs("instances", p.targets).Msg("instance not running, starting it")
		if _, err := r.Daemon.Start(ctx, &v1alpha1.StartRequest{InstanceNames: p.targets}); err != nil {
			return callError("start", p.targets, err)
		}
	default:
		r.Log.Debug().Str("command", p.command).Str("outcome", rpc.Classify(err).String()).Msg("primary call failed")
		return callError(p.command, p.targets, err)
	}

	r.Log.Debug().Str("command", p.command).Msg("retrying primary call")
	return callError(p.command, p.targets, p.call(ctx))
}

func (p primaryCall) recoveryFor(err error) recovery {
	switch rpc.Classify(err) {
	case rpc.OutcomeNotFound:
		if p.petenv != "" && len(p.targets) == 1 && p.targets[0] == p.petenv {
			return recoverLaunch
		}
	case rpc.OutcomeAborted:
		errs, decodeErr := rpc.InstanceErrors(err)
		if decodeErr != nil {
			return recoverNone
		}
		if len(errs) == 0 {
			if p.startOnAborted {
				return recoverStart
			}
			return recoverNone
		}
		if onlyPetEnvMissing(errs, p.petenv) {
			return recoverLaunch
		}
	}
	return recoverNone
}

// onlyPetEnvMissing reports whether the primary instance is the one and
// only instance the daemon reported, and it does not exist. Any mix with
// deleted or other missing instances is a plain failure.
func onlyPetEnvMissing(errs map[string]v1alpha1.InstanceErrorKind, petenv string) bool {
	if petenv == "" || len(errs) == 0 {
		return false
	}
	for name, kind := range errs {
		if name != petenv || kind != v1alpha1.InstanceDoesNotExist {
			return false
		}
	}
	return true
}

func (r *Runner) launchPetEnv(ctx context.Context, command, petenv string) error {
	if _, err := r.Daemon.Launch(ctx, &v1alpha1.LaunchRequest{InstanceName: petenv}); err != nil {
		return callError("launch", []string{petenv}, err)
	}
	return r.automount(ctx, command, petenv)
}

// automount mounts the user's home directory into the primary instance
// unless mounts are disabled. A failure to read the setting fails the
// command before anything is mounted.
func (r *Runner) automount(ctx context.Context, command, petenv string) error {
	val, err := r.Settings.Get(ctx, settings.MountsKey)
	if err != nil {
		return callError(command, nil, err)
	}
	if enabled, _ := strconv.ParseBool(val); !enabled {
		_, _ = fmt.Fprintf(r.Out, "Skipping '%s' mount due to disabled mounts feature\n", naming.HomeMountTarget)
		return nil
	}

	r.Log.Info().Str("source", r.Home).Str("instance", petenv).Str("target", naming.HomeMountTarget).Msg("mounting home directory")
	req := &v1alpha1.MountRequest{
		SourcePath: r.Home,
		TargetPaths: []v1alpha1.TargetPathInfo{
			{InstanceName: petenv, TargetPath: naming.HomeMountTarget},
		},
	}
	if _, err := r.Daemon.Mount(ctx, req); err != nil {
		return callError("mount", []string{petenv}, err)
	}
	return nil
}
