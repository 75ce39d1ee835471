// Package procexec hands the process over to the build command.
package procexec

import (
	"fmt"
	"path/filepath"
)

// Command describes the process that replaces the wrapper.
type Command struct {
	Path string   // absolute path to the binary
	Args []string // arguments, excluding argv[0]
	Env  []string // complete child environment
	Dir  string   // working directory at the moment of handover
}

// Argv returns the argv slice for the handover. argv[0] is the
// command's base name by convention.
func (c Command) Argv() []string {
	return append([]string{filepath.Base(c.Path)}, c.Args...)
}

// Executor hands the process over to a command.
//
// On Unix, Exec replaces the process image via syscall.Exec and never
// returns on success. On Windows, which has no true exec, it spawns the
// child with inherited stdio, waits, and returns an ExitError carrying
// a non-zero child exit code (nil when the child succeeds).
type Executor interface {
	Exec(cmd Command) error
}

// RealExecutor is the production implementation.
type RealExecutor struct{}

// ExitError reports the child's exit code on platforms without process
// replacement. Callers re-raise it as their own exit code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// MockExecutor is a test double for Executor.
type MockExecutor struct {
	ExecFunc func(cmd Command) error
	Commands []Command // every command passed to Exec
}

// Exec records the command and calls the mock function if set.
func (m *MockExecutor) Exec(cmd Command) error {
	m.Commands = append(m.Commands, cmd)
	if m.ExecFunc != nil {
		return m.ExecFunc(cmd)
	}
	return nil
}
