package alias

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScriptManager creates the executables that let aliases run directly from
// the shell.
type ScriptManager interface {
	// Create writes the script for name
	Create(name string, def Definition) error

	// Remove deletes the script for name
	Remove(name string) error

	// Dir returns the directory holding the scripts
	Dir() string
}

// ShellScripts writes POSIX sh wrappers that invoke the client binary.
type ShellScripts struct {
	dir string
	exe string
}

// NewShellScripts returns a ScriptManager writing to dir and invoking exe.
func NewShellScripts(dir, exe string) *ShellScripts {
	return &ShellScripts{dir: dir, exe: exe}
}

// Dir implements ScriptManager.
func (s *ShellScripts) Dir() string {
	return s.dir
}

// Create implements ScriptManager.
func (s *ShellScripts) Create(name string, _ Definition) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	script := fmt.Sprintf("#!/bin/sh\n\nexec %s %s -- \"$@\"\n", shellQuote(s.exe), shellQuote(name))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Remove implements ScriptManager.
func (s *ShellScripts) Remove(name string) error {
	path := filepath.Join(s.dir, name)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// shellQuote wraps s in single quotes for sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
