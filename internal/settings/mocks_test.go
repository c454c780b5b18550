package settings

import (
	"context"
	"sync"

	"github.com/jbweber/corral/api/v1alpha1"
)

// mockHandler is a Handler backed by a map with call tracking.
type mockHandler struct {
	mu     sync.Mutex
	values map[string]string
	keys   []string

	getErr error
	setErr error

	getCalls []string
	setCalls []string
}

func newMockHandler(values map[string]string) *mockHandler {
	m := &mockHandler{values: map[string]string{}}
	for k, v := range values {
		m.values[k] = v
		m.keys = append(m.keys, k)
	}
	return m
}

func (m *mockHandler) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls = append(m.getCalls, key)
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[key], nil
}

func (m *mockHandler) Set(_ context.Context, key, val string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls = append(m.setCalls, key+"="+val)
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = val
	return nil
}

func (m *mockHandler) Keys(context.Context) ([]string, error) {
	return m.keys, nil
}

// mockDaemonSettings implements daemonSettings.
type mockDaemonSettings struct {
	getFunc  func(req *v1alpha1.GetRequest) (*v1alpha1.GetReply, error)
	setFunc  func(req *v1alpha1.SetRequest) (*v1alpha1.SetReply, error)
	keysFunc func() (*v1alpha1.KeysReply, error)
}

func (m *mockDaemonSettings) Get(_ context.Context, req *v1alpha1.GetRequest) (*v1alpha1.GetReply, error) {
	return m.getFunc(req)
}

func (m *mockDaemonSettings) Set(_ context.Context, req *v1alpha1.SetRequest) (*v1alpha1.SetReply, error) {
	return m.setFunc(req)
}

func (m *mockDaemonSettings) Keys(context.Context, *v1alpha1.KeysRequest) (*v1alpha1.KeysReply, error) {
	return m.keysFunc()
}
