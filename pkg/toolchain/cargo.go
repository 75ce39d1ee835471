// Package toolchain locates cargo and reads the pinned Rust toolchain.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vertti/cargowrap/pkg/check"
	"github.com/vertti/cargowrap/pkg/version"
)

// DefaultTimeout bounds the cargo version probe.
const DefaultTimeout = 10 * time.Second

// ErrCargoNotFound is the one user-facing failure the wrapper produces
// itself; everything else propagates the underlying OS error.
var ErrCargoNotFound = errors.New("cargo not found on PATH")

// FindCargo locates the cargo binary. The guard runs before any directory
// change or child environment is built, so a missing cargo leaves the
// process untouched.
func FindCargo(r Runner) (string, error) {
	path, err := r.LookPath("cargo")
	if err != nil {
		return "", fmt.Errorf("%w: install a Rust toolchain via rustup (https://rustup.rs)", ErrCargoNotFound)
	}
	return path, nil
}

// CargoVersion probes `cargo --version` and extracts the version number.
func CargoVersion(r Runner, path string) (version.Version, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	stdout, stderr, err := r.RunContext(ctx, path, "--version")
	if err != nil {
		if stderr != "" {
			return version.Version{}, "", fmt.Errorf("cargo --version failed: %v: %s", err, strings.TrimSpace(stderr))
		}
		return version.Version{}, "", fmt.Errorf("cargo --version failed: %w", err)
	}

	raw := strings.TrimSpace(stdout)
	v, err := version.Extract(raw)
	if err != nil {
		return version.Version{}, raw, err
	}
	return v, raw, nil
}

// Check reports whether cargo is present and satisfies the version floor.
type Check struct {
	MinVersion *version.Version
	Runner     Runner
}

// Run executes the cargo check.
func (c *Check) Run() check.Result {
	result := check.Result{Name: "cargo"}

	path, err := FindCargo(c.Runner)
	if err != nil {
		return result.Failf("%v", err)
	}
	result.AddDetailf("path: %s", path)

	v, raw, err := CargoVersion(c.Runner, path)
	if err != nil {
		if raw != "" {
			result.AddDetailf("version output: %s", raw)
		}
		return result.Failf("%v", err)
	}
	result.AddDetailf("version: %s", v)

	if c.MinVersion != nil && !v.GreaterThanOrEqual(*c.MinVersion) {
		return result.Failf("version %s below minimum %s", v, c.MinVersion)
	}

	result.Status = check.StatusOK
	return result
}
