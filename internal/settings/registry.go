// Package settings routes settings keys to the handler that owns them.
//
// Handlers are tried in registration order and the first whose predicate
// claims a key serves it. Keys no registered handler claims go to the
// local handler, which also decides whether the key exists at all.
// Registrations are scoped: Register returns a release func that removes
// the handler again, so a command can install a handler for exactly the
// span it is needed.
package settings

import (
	"context"
	"sort"
	"strings"
	"sync"
)

const (
	// PetEnvKey names the primary instance. An empty value disables it.
	PetEnvKey = "client.primary-name"
	// DefaultPetEnv is the primary instance name when none is configured.
	DefaultPetEnv = "primary"
	// AutostartKey controls whether the client tray starts on login.
	AutostartKey = "client.gui.autostart"
	// MountsKey is the daemon-owned switch for the mounts feature.
	MountsKey = "local.privileged-mounts"
	// RemotePrefix marks keys owned by the daemon.
	RemotePrefix = "local."
)

// Handler serves a set of settings keys.
type Handler interface {
	// Get returns the value of key
	Get(ctx context.Context, key string) (string, error)

	// Set stores val under key
	Set(ctx context.Context, key, val string) error

	// Keys lists the keys this handler serves
	Keys(ctx context.Context) ([]string, error)
}

// HasPrefix returns a predicate claiming every key that starts with prefix.
func HasPrefix(prefix string) func(string) bool {
	return func(key string) bool {
		return strings.HasPrefix(key, prefix)
	}
}

type entry struct {
	id      uint64
	claims  func(string) bool
	handler Handler
}

// Registry is an ordered list of handlers with a local fallback.
type Registry struct {
	mu      sync.Mutex
	nextID  uint64
	entries []entry
	local   Handler
}

// NewRegistry creates a registry whose unclaimed keys go to local.
func NewRegistry(local Handler) *Registry {
	return &Registry{local: local}
}

// Register appends h to the handler list for keys claims accepts.
// The returned func removes it; calling it more than once is harmless.
func (r *Registry) Register(claims func(key string) bool, h Handler) (release func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.entries = append(r.entries, entry{id: id, claims: claims, handler: h})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, e := range r.entries {
				if e.id == id {
					r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
					return
				}
			}
		})
	}
}

func (r *Registry) snapshot() []entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entry(nil), r.entries...)
}

func (r *Registry) handlerFor(key string) Handler {
	for _, e := range r.snapshot() {
		if e.claims(key) {
			return e.handler
		}
	}
	return r.local
}

// Get returns the value of key from the handler that owns it.
func (r *Registry) Get(ctx context.Context, key string) (string, error) {
	return r.handlerFor(key).Get(ctx, key)
}

// Set stores val under key with the handler that owns it.
func (r *Registry) Set(ctx context.Context, key, val string) error {
	return r.handlerFor(key).Set(ctx, key, val)
}

// Keys returns the sorted union of keys from every handler.
func (r *Registry) Keys(ctx context.Context) ([]string, error) {
	handlers := []Handler{r.local}
	for _, e := range r.snapshot() {
		handlers = append(handlers, e.handler)
	}

	seen := map[string]struct{}{}
	for _, h := range handlers {
		keys, err := h.Keys(ctx)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			seen[k] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// PetEnv returns the configured primary instance name; empty when disabled.
func PetEnv(ctx context.Context, r *Registry) (string, error) {
	return r.Get(ctx, PetEnvKey)
}
