package vm

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/jbweber/corral/api/v1alpha1"
)

// SSHInfo returns the connection details for instance on behalf of command
// (shell or exec). A missing primary instance is launched and a stopped or
// suspended instance is started before the details are requested again.
func (r *Runner) SSHInfo(ctx context.Context, command, instance, petenv string) (v1alpha1.SSHInfo, error) {
	targets := []string{instance}
	var reply *v1alpha1.SSHInfoReply

	err := r.runPrimary(ctx, primaryCall{
		command:        command,
		targets:        targets,
		petenv:         petenv,
		startOnAborted: true,
		call: func(ctx context.Context) error {
			var err error
			reply, err = r.Daemon.SSHInfo(ctx, &v1alpha1.SSHInfoRequest{InstanceNames: targets})
			return err
		},
	})
	if err != nil {
		return v1alpha1.SSHInfo{}, err
	}

	info, ok := reply.SSHInfo[instance]
	if !ok {
		return v1alpha1.SSHInfo{}, fmt.Errorf("%s failed: no connection details returned for %q", command, instance)
	}
	return info, nil
}

// MountedWorkDir maps the host directory cwd to its location inside
// instance when cwd lies in one of the instance's mounts. Failures to
// query the instance are logged and reported as no mapping.
func (r *Runner) MountedWorkDir(ctx context.Context, instance, cwd string) (string, bool) {
	reply, err := r.Daemon.Info(ctx, &v1alpha1.InfoRequest{
		InstanceNames:        []string{instance},
		NoRuntimeInformation: true,
	})
	if err != nil {
		r.Log.Debug().Err(err).Str("instance", instance).Msg("cannot read mounts, running in default directory")
		return "", false
	}
	for _, info := range reply.Info {
		if info.Name == instance {
			return mapToMount(info.Mounts, cwd)
		}
	}
	return "", false
}

// mapToMount finds the mount whose source contains dir. The last matching
// mount wins.
//
// Example: dir "/home/u/src/app" with mount "/home/u" → "Home" maps to
// "Home/src/app".
func mapToMount(mounts []v1alpha1.MountInfo, dir string) (string, bool) {
	dirParts := splitPath(dir)

	var (
		target string
		found  bool
	)
	for _, m := range mounts {
		srcParts := splitPath(m.SourcePath)
		if !hasPrefix(dirParts, srcParts) {
			continue
		}
		target = path.Join(append([]string{m.TargetPath}, dirParts[len(srcParts):]...)...)
		found = true
	}
	return target, found
}

func splitPath(p string) []string {
	var parts []string
	for _, s := range strings.Split(filepath.ToSlash(filepath.Clean(p)), "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

func hasPrefix(parts, prefix []string) bool {
	if len(parts) < len(prefix) {
		return false
	}
	for i := range prefix {
		if parts[i] != prefix[i] {
			return false
		}
	}
	return true
}
