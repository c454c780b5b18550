package alias

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jbweber/corral/api/v1alpha1"
)

// mockFileOps is an in-memory FileOps with per-operation failure injection.
type mockFileOps struct {
	mu    sync.Mutex
	files map[string][]byte

	removeErr    error
	renameErr    func(from, to string) error
	writeFileErr error

	calls []string
}

func newMockFileOps() *mockFileOps {
	return &mockFileOps{files: map[string][]byte{}}
}

func (m *mockFileOps) record(format string, args ...any) {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

func (m *mockFileOps) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *mockFileOps) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: no such file", path)
	}
	return data, nil
}

func (m *mockFileOps) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("write %s", path)
	if m.writeFileErr != nil {
		return m.writeFileErr
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func (m *mockFileOps) Rename(from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("rename %s %s", from, to)
	if m.renameErr != nil {
		if err := m.renameErr(from, to); err != nil {
			return err
		}
	}
	data, ok := m.files[from]
	if !ok {
		return fmt.Errorf("%s: no such file", from)
	}
	m.files[to] = data
	delete(m.files, from)
	return nil
}

func (m *mockFileOps) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("remove %s", path)
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.files, path)
	return nil
}

func (m *mockFileOps) MkdirAll(string) error { return nil }

// tmpFiles returns the leftover temp files.
func (m *mockFileOps) tmpFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.files {
		if strings.HasSuffix(p, ".tmp") {
			out = append(out, p)
		}
	}
	return out
}

// mockScripts is a ScriptManager with call tracking.
type mockScripts struct {
	dir       string
	createErr error
	removeErr error

	created []string
	removed []string
}

func (m *mockScripts) Create(name string, _ Definition) error {
	m.created = append(m.created, name)
	return m.createErr
}

func (m *mockScripts) Remove(name string) error {
	m.removed = append(m.removed, name)
	return m.removeErr
}

func (m *mockScripts) Dir() string { return m.dir }

// mockInstances answers Info calls from a fixed set of instance names.
type mockInstances struct {
	names   map[string]bool
	infoErr error

	infoCalls []*v1alpha1.InfoRequest
}

func newMockInstances(names ...string) *mockInstances {
	m := &mockInstances{names: map[string]bool{}}
	for _, n := range names {
		m.names[n] = true
	}
	return m
}

func (m *mockInstances) Info(_ context.Context, req *v1alpha1.InfoRequest) (*v1alpha1.InfoReply, error) {
	m.infoCalls = append(m.infoCalls, req)
	if m.infoErr != nil {
		return nil, m.infoErr
	}
	reply := &v1alpha1.InfoReply{}
	for _, n := range req.InstanceNames {
		if !m.names[n] {
			return nil, status.Errorf(codes.NotFound, "instance %q does not exist", n)
		}
		reply.Info = append(reply.Info, v1alpha1.InstanceInfo{Name: n, State: "Running"})
	}
	return reply, nil
}
