package vm

import (
	"context"
	"sync"

	"github.com/jbweber/corral/api/v1alpha1"
)

// mockDaemon is a mock implementation of the daemonClient interface for testing.
type mockDaemon struct {
	mu sync.Mutex

	// Configurable behavior
	launchFunc  func(req *v1alpha1.LaunchRequest) (*v1alpha1.LaunchReply, error)
	mountFunc   func(req *v1alpha1.MountRequest) (*v1alpha1.MountReply, error)
	infoFunc    func(req *v1alpha1.InfoRequest) (*v1alpha1.InfoReply, error)
	listFunc    func(req *v1alpha1.ListRequest) (*v1alpha1.ListReply, error)
	startFunc   func(req *v1alpha1.StartRequest) (*v1alpha1.StartReply, error)
	stopFunc    func(req *v1alpha1.StopRequest) (*v1alpha1.StopReply, error)
	deleteFunc  func(req *v1alpha1.DeleteRequest) (*v1alpha1.DeleteReply, error)
	sshInfoFunc func(req *v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error)
	versionFunc func(req *v1alpha1.VersionRequest) (*v1alpha1.VersionReply, error)

	// Call tracking, in order of arrival
	calls []string

	launchCalls  []*v1alpha1.LaunchRequest
	mountCalls   []*v1alpha1.MountRequest
	infoCalls    []*v1alpha1.InfoRequest
	startCalls   []*v1alpha1.StartRequest
	stopCalls    []*v1alpha1.StopRequest
	suspendCalls []*v1alpha1.SuspendRequest
	restartCalls []*v1alpha1.RestartRequest
	deleteCalls  []*v1alpha1.DeleteRequest
	sshInfoCalls []*v1alpha1.SSHInfoRequest
}

// newMockDaemon creates a mock daemon where every call succeeds.
func newMockDaemon() *mockDaemon {
	return &mockDaemon{}
}

// sequence returns a func that yields errs in turn, then nil.
func sequence(errs ...error) func() error {
	i := 0
	return func() error {
		if i >= len(errs) {
			return nil
		}
		err := errs[i]
		i++
		return err
	}
}

func (m *mockDaemon) Launch(_ context.Context, req *v1alpha1.LaunchRequest) (*v1alpha1.LaunchReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "launch")
	m.launchCalls = append(m.launchCalls, req)
	if m.launchFunc != nil {
		return m.launchFunc(req)
	}
	return &v1alpha1.LaunchReply{VMInstanceName: req.InstanceName}, nil
}

func (m *mockDaemon) Mount(_ context.Context, req *v1alpha1.MountRequest) (*v1alpha1.MountReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "mount")
	m.mountCalls = append(m.mountCalls, req)
	if m.mountFunc != nil {
		return m.mountFunc(req)
	}
	return &v1alpha1.MountReply{}, nil
}

func (m *mockDaemon) Info(_ context.Context, req *v1alpha1.InfoRequest) (*v1alpha1.InfoReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "info")
	m.infoCalls = append(m.infoCalls, req)
	if m.infoFunc != nil {
		return m.infoFunc(req)
	}
	return &v1alpha1.InfoReply{}, nil
}

func (m *mockDaemon) List(_ context.Context, req *v1alpha1.ListRequest) (*v1alpha1.ListReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "list")
	if m.listFunc != nil {
		return m.listFunc(req)
	}
	return &v1alpha1.ListReply{}, nil
}

func (m *mockDaemon) Start(_ context.Context, req *v1alpha1.StartRequest) (*v1alpha1.StartReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "start")
	m.startCalls = append(m.startCalls, req)
	if m.startFunc != nil {
		return m.startFunc(req)
	}
	return &v1alpha1.StartReply{}, nil
}

func (m *mockDaemon) Stop(_ context.Context, req *v1alpha1.StopRequest) (*v1alpha1.StopReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "stop")
	m.stopCalls = append(m.stopCalls, req)
	if m.stopFunc != nil {
		return m.stopFunc(req)
	}
	return &v1alpha1.StopReply{}, nil
}

func (m *mockDaemon) Suspend(_ context.Context, req *v1alpha1.SuspendRequest) (*v1alpha1.SuspendReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "suspend")
	m.suspendCalls = append(m.suspendCalls, req)
	return &v1alpha1.SuspendReply{}, nil
}

func (m *mockDaemon) Restart(_ context.Context, req *v1alpha1.RestartRequest) (*v1alpha1.RestartReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "restart")
	m.restartCalls = append(m.restartCalls, req)
	return &v1alpha1.RestartReply{}, nil
}

func (m *mockDaemon) Delete(_ context.Context, req *v1alpha1.DeleteRequest) (*v1alpha1.DeleteReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "delete")
	m.deleteCalls = append(m.deleteCalls, req)
	if m.deleteFunc != nil {
		return m.deleteFunc(req)
	}
	return &v1alpha1.DeleteReply{}, nil
}

func (m *mockDaemon) SSHInfo(_ context.Context, req *v1alpha1.SSHInfoRequest) (*v1alpha1.SSHInfoReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "ssh_info")
	m.sshInfoCalls = append(m.sshInfoCalls, req)
	if m.sshInfoFunc != nil {
		return m.sshInfoFunc(req)
	}
	reply := &v1alpha1.SSHInfoReply{SSHInfo: map[string]v1alpha1.SSHInfo{}}
	for _, name := range req.InstanceNames {
		reply.SSHInfo[name] = v1alpha1.SSHInfo{Host: "10.0.0.2", Port: 22, Username: "ubuntu"}
	}
	return reply, nil
}

func (m *mockDaemon) Version(_ context.Context, req *v1alpha1.VersionRequest) (*v1alpha1.VersionReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "version")
	if m.versionFunc != nil {
		return m.versionFunc(req)
	}
	return &v1alpha1.VersionReply{Version: "1.0.0"}, nil
}

// mockSettings is a settingsReader backed by a map.
type mockSettings struct {
	values map[string]string
	err    error

	getCalls []string
}

func newMockSettings(values map[string]string) *mockSettings {
	return &mockSettings{values: values}
}

func (m *mockSettings) Get(_ context.Context, key string) (string, error) {
	m.getCalls = append(m.getCalls, key)
	if m.err != nil {
		return "", m.err
	}
	return m.values[key], nil
}
