package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jbweber/corral/api/v1alpha1"
	"github.com/jbweber/corral/internal/alias"
	"github.com/jbweber/corral/internal/settings"
	"github.com/jbweber/corral/internal/sshclient"
)

// mockDaemon implements rpc.DaemonClient. Unset funcs succeed with an
// empty reply; every call is recorded by method name.
type mockDaemon struct {
	launchFunc  func(req *v1alpha1.LaunchRequest) (*v1alpha1.LaunchReply, error)
	infoFunc    func(req *v1alpha1.InfoRequest) (*v1alpha1.InfoReply, error)
	listFunc    func() (*v1alpha1.ListReply, error)
	startFunc   func(req *v1alpha1.StartRequest) (*v1alpha1.StartReply, error)
	sshInfoFunc func(req *v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error)
	getFunc     func(req *v1alpha1.GetRequest) (*v1alpha1.GetReply, error)
	setFunc     func(req *v1alpha1.SetRequest) (*v1alpha1.SetReply, error)
	keysFunc    func() (*v1alpha1.KeysReply, error)
	versionFunc func() (*v1alpha1.VersionReply, error)

	calls    []string
	requests []v1alpha1.Request
}

func (m *mockDaemon) record(method string, req v1alpha1.Request) {
	m.calls = append(m.calls, method)
	m.requests = append(m.requests, req)
}

func (m *mockDaemon) Launch(_ context.Context, req *v1alpha1.LaunchRequest) (*v1alpha1.LaunchReply, error) {
	m.record("launch", req)
	if m.launchFunc != nil {
		return m.launchFunc(req)
	}
	return &v1alpha1.LaunchReply{VMInstanceName: req.InstanceName}, nil
}

func (m *mockDaemon) Mount(_ context.Context, req *v1alpha1.MountRequest) (*v1alpha1.MountReply, error) {
	m.record("mount", req)
	return &v1alpha1.MountReply{}, nil
}

func (m *mockDaemon) Info(_ context.Context, req *v1alpha1.InfoRequest) (*v1alpha1.InfoReply, error) {
	m.record("info", req)
	if m.infoFunc != nil {
		return m.infoFunc(req)
	}
	reply := &v1alpha1.InfoReply{}
	for _, name := range req.InstanceNames {
		reply.Info = append(reply.Info, v1alpha1.InstanceInfo{Name: name, State: "Running"})
	}
	return reply, nil
}

func (m *mockDaemon) List(_ context.Context, req *v1alpha1.ListRequest) (*v1alpha1.ListReply, error) {
	m.record("list", req)
	if m.listFunc != nil {
		return m.listFunc()
	}
	return &v1alpha1.ListReply{}, nil
}

func (m *mockDaemon) Start(_ context.Context, req *v1alpha1.StartRequest) (*v1alpha1.StartReply, error) {
	m.record("start", req)
	if m.startFunc != nil {
		return m.startFunc(req)
	}
	return &v1alpha1.StartReply{}, nil
}

func (m *mockDaemon) Stop(_ context.Context, req *v1alpha1.StopRequest) (*v1alpha1.StopReply, error) {
	m.record("stop", req)
	return &v1alpha1.StopReply{}, nil
}

func (m *mockDaemon) Suspend(_ context.Context, req *v1alpha1.SuspendRequest) (*v1alpha1.SuspendReply, error) {
	m.record("suspend", req)
	return &v1alpha1.SuspendReply{}, nil
}

func (m *mockDaemon) Restart(_ context.Context, req *v1alpha1.RestartRequest) (*v1alpha1.RestartReply, error) {
	m.record("restart", req)
	return &v1alpha1.RestartReply{}, nil
}

func (m *mockDaemon) Delete(_ context.Context, req *v1alpha1.DeleteRequest) (*v1alpha1.DeleteReply, error) {
	m.record("delete", req)
	return &v1alpha1.DeleteReply{}, nil
}

func (m *mockDaemon) SSHInfo(_ context.Context, req *v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
	m.record("ssh_info", req)
	if m.sshInfoFunc != nil {
		return m.sshInfoFunc(req)
	}
	reply := &v1alpha1.SSHInfoReply{SSHInfo: map[string]v1alpha1.SSHInfo{}}
	for _, name := range req.InstanceNames {
		reply.SSHInfo[name] = v1alpha1.SSHInfo{Host: name + ".local", Port: 22, Username: "ubuntu"}
	}
	return reply, nil
}

func (m *mockDaemon) Get(_ context.Context, req *v1alpha1.GetRequest) (*v1alpha1.GetReply, error) {
	m.record("get", req)
	if m.getFunc != nil {
		return m.getFunc(req)
	}
	return &v1alpha1.GetReply{}, nil
}

func (m *mockDaemon) Set(_ context.Context, req *v1alpha1.SetRequest) (*v1alpha1.SetReply, error) {
	m.record("set", req)
	if m.setFunc != nil {
		return m.setFunc(req)
	}
	return &v1alpha1.SetReply{}, nil
}

func (m *mockDaemon) Keys(_ context.Context, req *v1alpha1.KeysRequest) (*v1alpha1.KeysReply, error) {
	m.record("keys", req)
	if m.keysFunc != nil {
		return m.keysFunc()
	}
	return &v1alpha1.KeysReply{Keys: []string{"local.driver", "local.privileged-mounts"}}, nil
}

func (m *mockDaemon) Version(_ context.Context, req *v1alpha1.VersionRequest) (*v1alpha1.VersionReply, error) {
	m.record("version", req)
	if m.versionFunc != nil {
		return m.versionFunc()
	}
	return &v1alpha1.VersionReply{Version: "1.1.0"}, nil
}

// mockSession records what would have run on the instance.
type mockSession struct {
	shells   int
	execArgs [][]string
	workDirs []string
	execErr  error
}

func (m *mockSession) Shell(context.Context, sshclient.Streams) error {
	m.shells++
	return nil
}

func (m *mockSession) Exec(_ context.Context, args []string, workDir string, _ sshclient.Streams) error {
	m.execArgs = append(m.execArgs, args)
	m.workDirs = append(m.workDirs, workDir)
	return m.execErr
}

type fixture struct {
	t        *testing.T
	daemon   *mockDaemon
	session  *mockSession
	local    *settings.FileStore
	dir      string
	cwd      string
	path     string
	stdin    string
	out      bytes.Buffer
	errOut   bytes.Buffer
	sessions []v1alpha1.SSHInfo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	return &fixture{
		t:       t,
		daemon:  &mockDaemon{},
		session: &mockSession{},
		local:   settings.NewFileStore(filepath.Join(dir, "config", "corral.toml")),
		dir:     dir,
		cwd:     "/tmp",
		path:    "/usr/bin",
	}
}

func (f *fixture) scriptsDir() string {
	return filepath.Join(f.dir, "bin")
}

func (f *fixture) run(args ...string) int {
	f.t.Helper()
	f.out.Reset()
	f.errOut.Reset()

	return Run(context.Background(), Deps{
		Prog:          "corral",
		Args:          args,
		Version:       "1.2.0",
		In:            strings.NewReader(f.stdin),
		Out:           &f.out,
		Err:           &f.errOut,
		Daemon:        f.daemon,
		LocalSettings: f.local,
		Aliases:       alias.NewConfig(filepath.Join(f.dir, "data")),
		Scripts:       alias.NewShellScripts(f.scriptsDir(), "/usr/bin/corral"),
		Home:          "/home/user",
		Getenv: func(key string) string {
			if key == "PATH" {
				return f.path
			}
			return ""
		},
		Getwd: func() (string, error) { return f.cwd, nil },
		NewSession: func(info v1alpha1.SSHInfo, _ zerolog.Logger) (Session, error) {
			f.sessions = append(f.sessions, info)
			return f.session, nil
		},
	})
}
