// Package repo resolves the repository root the wrapper operates on.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EngineSubdir is the Rust engine subtree, relative to the repository root.
	EngineSubdir = "src/rust/engine"
	// RootEnvVar overrides root resolution when set.
	RootEnvVar = "CARGOWRAP_ROOT"
)

// ErrRootNotFound is returned when no directory containing the engine
// subtree can be located.
var ErrRootNotFound = errors.New("repository root not found")

// Probe abstracts the OS lookups used during root resolution.
type Probe interface {
	LookupEnv(key string) (string, bool)
	Executable() (string, error)
	Getwd() (string, error)
	Stat(path string) (os.FileInfo, error)
}

// RealProbe implements Probe against the real process environment.
type RealProbe struct{}

func (r *RealProbe) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }
func (r *RealProbe) Executable() (string, error)         { return os.Executable() }
func (r *RealProbe) Getwd() (string, error)              { return os.Getwd() }
func (r *RealProbe) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// MockProbe is a test double for Probe.
type MockProbe struct {
	LookupEnvFunc  func(key string) (string, bool)
	ExecutableFunc func() (string, error)
	GetwdFunc      func() (string, error)
	StatFunc       func(path string) (os.FileInfo, error)
}

func (m *MockProbe) LookupEnv(key string) (string, bool) { return m.LookupEnvFunc(key) }
func (m *MockProbe) Executable() (string, error)         { return m.ExecutableFunc() }
func (m *MockProbe) Getwd() (string, error)              { return m.GetwdFunc() }
func (m *MockProbe) Stat(path string) (os.FileInfo, error) {
	return m.StatFunc(path)
}

// Find resolves the repository root. Resolution order:
//
//  1. RootEnvVar, when set; must name an existing directory.
//  2. The directory containing the wrapper executable, when it holds
//     the engine subtree. This is the normal case: the wrapper lives
//     at the repository root.
//  3. Walking up from the current directory until a directory holding
//     the engine subtree is found.
func Find(p Probe) (string, error) {
	if override, ok := p.LookupEnv(RootEnvVar); ok && override != "" {
		info, err := p.Stat(override)
		if err != nil {
			return "", fmt.Errorf("%s points at %q: %w", RootEnvVar, override, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%s points at %q: not a directory", RootEnvVar, override)
		}
		return filepath.Abs(override)
	}

	if exe, err := p.Executable(); err == nil {
		dir := filepath.Dir(exe)
		if hasEngine(p, dir) {
			return dir, nil
		}
	}

	wd, err := p.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	dir, err := filepath.Abs(wd)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		if hasEngine(p, dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w: no %s above %s", ErrRootNotFound, EngineSubdir, wd)
}

// EngineDir returns the engine subtree for a resolved root.
func EngineDir(root string) string {
	return filepath.Join(root, filepath.FromSlash(EngineSubdir))
}

func hasEngine(p Probe, dir string) bool {
	info, err := p.Stat(EngineDir(dir))
	return err == nil && info.IsDir()
}
