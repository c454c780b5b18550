package settings

import (
	"context"

	"github.com/jbweber/corral/api/v1alpha1"
)

// daemonSettings is the part of the daemon API that serves settings.
type daemonSettings interface {
	Get(ctx context.Context, req *v1alpha1.GetRequest) (*v1alpha1.GetReply, error)
	Set(ctx context.Context, req *v1alpha1.SetRequest) (*v1alpha1.SetReply, error)
	Keys(ctx context.Context, req *v1alpha1.KeysRequest) (*v1alpha1.KeysReply, error)
}

// RemoteHandler serves daemon-owned keys by calling the daemon.
// Request verbosity is stamped by the client it is given.
type RemoteHandler struct {
	client daemonSettings
}

// NewRemoteHandler creates a handler backed by client.
func NewRemoteHandler(client daemonSettings) *RemoteHandler {
	return &RemoteHandler{client: client}
}

// Claims reports whether key is daemon-owned.
func (h *RemoteHandler) Claims(key string) bool {
	return HasPrefix(RemotePrefix)(key)
}

// Get implements Handler.
func (h *RemoteHandler) Get(ctx context.Context, key string) (string, error) {
	reply, err := h.client.Get(ctx, &v1alpha1.GetRequest{Key: key})
	if err != nil {
		return "", &Error{Kind: KindRemote, Key: key, Err: err}
	}
	return reply.Value, nil
}

// Set implements Handler.
func (h *RemoteHandler) Set(ctx context.Context, key, val string) error {
	if _, err := h.client.Set(ctx, &v1alpha1.SetRequest{Key: key, Val: val}); err != nil {
		return &Error{Kind: KindRemote, Key: key, Value: val, Err: err}
	}
	return nil
}

// Keys implements Handler.
func (h *RemoteHandler) Keys(ctx context.Context) ([]string, error) {
	reply, err := h.client.Keys(ctx, &v1alpha1.KeysRequest{})
	if err != nil {
		return nil, &Error{Kind: KindRemote, Err: err}
	}
	return reply.Keys, nil
}
