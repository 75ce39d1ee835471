//go:build windows

package procexec

import (
	"errors"
	"os"
	"os/exec"
)

// Exec spawns the command and waits. Windows has no exec syscall that
// replaces the process image, so the child's exit code is surfaced as
// an ExitError for the caller to re-raise.
func (e *RealExecutor) Exec(cmd Command) error {
	// #nosec G204 -- forwarding the caller's build arguments is the point.
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	err := c.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode()}
	}
	return err
}
