//go:build unix

package procexec

import (
	"os"
	"syscall"
)

// Exec replaces the current process with the command. The directory
// change happens here, last: every guard has already passed by the time
// a Command reaches the executor.
func (e *RealExecutor) Exec(cmd Command) error {
	if err := os.Chdir(cmd.Dir); err != nil {
		return err
	}
	// #nosec G204 -- forwarding the caller's build arguments is the point.
	return syscall.Exec(cmd.Path, cmd.Argv(), cmd.Env)
}
