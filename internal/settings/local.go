package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jbweber/corral/internal/naming"
)

// Definition describes a locally stored key.
type Definition struct {
	// Default is returned when the key has never been set.
	Default string
	// Normalize validates a new value and returns the form to store.
	// A nil Normalize accepts anything verbatim.
	Normalize func(val string) (string, error)
}

// DefaultDefinitions returns the keys served by the local store.
func DefaultDefinitions() map[string]Definition {
	return map[string]Definition{
		PetEnvKey:    {Default: DefaultPetEnv, Normalize: normalizePetEnv},
		AutostartKey: {Default: "true", Normalize: normalizeBool},
	}
}

func normalizePetEnv(val string) (string, error) {
	if val == "" {
		return val, nil
	}
	if err := naming.ValidInstanceName(val); err != nil {
		return "", err
	}
	return val, nil
}

func normalizeBool(val string) (string, error) {
	b, err := strconv.ParseBool(strings.ToLower(val))
	if err != nil {
		return "", fmt.Errorf("expected a boolean value")
	}
	return strconv.FormatBool(b), nil
}

// FileStore serves client-owned keys from a TOML file. Dotted keys map to
// nested tables, so "client.gui.autostart" lives in [client.gui].
type FileStore struct {
	mu   sync.Mutex
	path string
	defs map[string]Definition
}

// NewFileStore creates a store backed by path with the default keys.
// The file is created on first Set.
func NewFileStore(path string) *FileStore {
	return NewFileStoreWithDefinitions(path, DefaultDefinitions())
}

// NewFileStoreWithDefinitions creates a store serving only defs.
func NewFileStoreWithDefinitions(path string, defs map[string]Definition) *FileStore {
	return &FileStore{path: path, defs: defs}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get implements Handler.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	def, ok := s.defs[key]
	if !ok {
		return "", unrecognized(key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.load()
	if err != nil {
		return "", &Error{Kind: KindPersistent, Key: key, Err: err}
	}
	if val, ok := lookup(tree, key); ok {
		return val, nil
	}
	return def.Default, nil
}

// Set implements Handler.
func (s *FileStore) Set(_ context.Context, key, val string) error {
	def, ok := s.defs[key]
	if !ok {
		return unrecognized(key)
	}
	if def.Normalize != nil {
		normalized, err := def.Normalize(val)
		if err != nil {
			return &Error{Kind: KindInvalid, Key: key, Value: val, Reason: err.Error()}
		}
		val = normalized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.load()
	if err != nil {
		return &Error{Kind: KindPersistent, Key: key, Err: err}
	}
	assign(tree, key, val)
	if err := s.write(tree); err != nil {
		return &Error{Kind: KindPersistent, Key: key, Err: err}
	}
	return nil
}

// Keys implements Handler.
func (s *FileStore) Keys(context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.defs))
	for k := range s.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	tree := map[string]any{}
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return tree, nil
}

// write replaces the file atomically so readers never see a partial file.
func (s *FileStore) write(tree map[string]any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tree); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

func lookup(tree map[string]any, key string) (string, bool) {
	parts := strings.Split(key, ".")
	node := tree
	for i, p := range parts {
		v, ok := node[p]
		if !ok {
			return "", false
		}
		if i == len(parts)-1 {
			if s, ok := v.(string); ok {
				return s, true
			}
			return fmt.Sprint(v), true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return "", false
		}
		node = next
	}
	return "", false
}

func assign(tree map[string]any, key, val string) {
	parts := strings.Split(key, ".")
	node := tree
	for _, p := range parts[:len(parts)-1] {
		next, ok := node[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[p] = next
		}
		node = next
	}
	node[parts[len(parts)-1]] = val
}
