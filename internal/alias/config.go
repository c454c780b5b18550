package alias

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jbweber/corral/internal/loader"
)

const (
	// FileName is the alias file inside the data directory.
	FileName = "aliases.yaml"
	// BackupSuffix is appended to FileName for the previous generation.
	BackupSuffix = ".bak"
)

// FileOps is the byte-level storage used to persist the alias file.
//
// In production, this is satisfied by OSFileOps.
// In tests, this is satisfied by mock implementations.
type FileOps interface {
	// Exists reports whether path exists
	Exists(path string) bool

	// ReadFile returns the content of path
	ReadFile(path string) ([]byte, error)

	// WriteFile creates or truncates path with data
	WriteFile(path string, data []byte) error

	// Rename atomically replaces to with from
	Rename(from, to string) error

	// Remove deletes path
	Remove(path string) error

	// MkdirAll creates path and any missing parents
	MkdirAll(path string) error
}

// OSFileOps implements FileOps on the local filesystem.
type OSFileOps struct{}

// Exists implements FileOps.
func (OSFileOps) Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// ReadFile implements FileOps.
func (OSFileOps) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// WriteFile implements FileOps.
func (OSFileOps) WriteFile(path string, data []byte) error { return os.WriteFile(path, data, 0o600) }

// Rename implements FileOps.
func (OSFileOps) Rename(from, to string) error { return os.Rename(from, to) }

// Remove implements FileOps.
func (OSFileOps) Remove(path string) error { return os.Remove(path) }

// MkdirAll implements FileOps.
func (OSFileOps) MkdirAll(path string) error { return os.MkdirAll(path, 0o755) }

// Config loads and saves the alias store.
type Config struct {
	path   string
	backup string
	ops    FileOps
	now    func() time.Time
	log    zerolog.Logger
}

// ConfigOption configures a Config.
type ConfigOption func(*Config)

// WithFileOps replaces the filesystem.
func WithFileOps(ops FileOps) ConfigOption {
	return func(c *Config) { c.ops = ops }
}

// WithClock replaces time.Now for the UpdatedAt stamp.
func WithClock(now func() time.Time) ConfigOption {
	return func(c *Config) { c.now = now }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log zerolog.Logger) ConfigOption {
	return func(c *Config) { c.log = log }
}

// NewConfig returns a Config storing aliases under dir.
func NewConfig(dir string, opts ...ConfigOption) *Config {
	path := filepath.Join(dir, FileName)
	c := &Config{
		path:   path,
		backup: path + BackupSuffix,
		ops:    OSFileOps{},
		now:    time.Now,
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Path returns the canonical alias file path.
func (c *Config) Path() string { return c.path }

// BackupPath returns the backup alias file path.
func (c *Config) BackupPath() string { return c.backup }

// Load reads the store. If the canonical file is missing, the backup left
// by an interrupted Save is used; with neither present the store is empty.
func (c *Config) Load() (*Dict, error) {
	source := c.path
	if !c.ops.Exists(source) {
		source = c.backup
		if !c.ops.Exists(source) {
			c.log.Debug().Str("path", c.path).Msg("no alias file, starting empty")
			return NewDict(), nil
		}
		c.log.Debug().Str("path", source).Msg("alias file missing, reading backup")
	}

	data, err := c.ops.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read aliases file %s: %w", source, err)
	}
	list, err := loader.LoadAliasesFromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load aliases file %s: %w", source, err)
	}
	return dictFromList(list), nil
}

// Save replaces the store on disk. At every point at least one of the
// canonical file and its backup holds a complete store:
//  1. Remove the old backup
//  2. Rename the canonical file to the backup
//  3. Write a temp file and rename it to the canonical path
func (c *Config) Save(d *Dict) error {
	list := d.toList()
	list.Touch(c.now())
	data, err := loader.MarshalAliases(list)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	if err := c.ops.MkdirAll(dir); err != nil {
		return fmt.Errorf("cannot create aliases directory %s: %w", dir, err)
	}

	if c.ops.Exists(c.backup) {
		c.log.Debug().Str("path", c.backup).Msg("removing old alias backup")
		if err := c.ops.Remove(c.backup); err != nil {
			return fmt.Errorf("cannot remove old aliases backup file %s: %w", c.backup, err)
		}
	}

	if c.ops.Exists(c.path) {
		c.log.Debug().Str("from", c.path).Str("to", c.backup).Msg("backing up alias file")
		if err := c.ops.Rename(c.path, c.backup); err != nil {
			return fmt.Errorf("cannot rename aliases config to %s: %w", c.backup, err)
		}
	}

	tmp := filepath.Join(dir, "."+FileName+"."+uuid.NewString()+".tmp")
	c.log.Debug().Str("tmp", tmp).Int("aliases", d.Len()).Msg("writing alias file")
	if err := c.ops.WriteFile(tmp, data); err != nil {
		return fmt.Errorf("cannot create aliases config file %s: %w", c.path, err)
	}
	if err := c.ops.Rename(tmp, c.path); err != nil {
		_ = c.ops.Remove(tmp)
		return fmt.Errorf("cannot create aliases config file %s: %w", c.path, err)
	}

	return nil
}
