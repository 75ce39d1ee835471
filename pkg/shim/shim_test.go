package shim

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertti/cargowrap/pkg/interp"
	"github.com/vertti/cargowrap/pkg/procexec"
	"github.com/vertti/cargowrap/pkg/toolchain"
)

func makeRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "rust", "engine"), 0o755))
	return root
}

func writeWrapfile(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".cargowrap.toml"), []byte(content), 0o600))
}

func pythonRunner(path, ver string) *interp.MockRunner {
	return &interp.MockRunner{
		LookPathFunc: func(file string) (string, error) {
			return "/usr/bin/" + file, nil
		},
		RunContextFunc: func(ctx context.Context, name string, args ...string) (string, string, error) {
			return `{"executable": "` + path + `", "version": "` + ver + `", "implementation": "CPython"}`, "", nil
		},
	}
}

func cargoRunner(path string) *toolchain.MockRunner {
	return &toolchain.MockRunner{
		LookPathFunc: func(file string) (string, error) {
			return path, nil
		},
	}
}

func noCargoRunner() *toolchain.MockRunner {
	return &toolchain.MockRunner{
		LookPathFunc: func(file string) (string, error) {
			return "", errors.New("executable file not found in $PATH")
		},
	}
}

func envValue(env []string, key string) (string, bool) {
	prefix := key + "="
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			return kv[len(prefix):], true
		}
	}
	return "", false
}

func TestRun_HandsOverToCargo(t *testing.T) {
	root := makeRepo(t)
	executor := &procexec.MockExecutor{}

	s := &Shim{
		Root:         root,
		InterpRunner: pythonRunner("/usr/bin/python3.11", "3.11.4"),
		CargoRunner:  cargoRunner("/home/user/.cargo/bin/cargo"),
		Executor:     executor,
		Environ:      func() []string { return []string{"HOME=/home/user", "PATH=/usr/bin"} },
	}

	require.NoError(t, s.Run([]string{"build", "--release"}))
	require.Len(t, executor.Commands, 1)

	cmd := executor.Commands[0]
	assert.Equal(t, "/home/user/.cargo/bin/cargo", cmd.Path)
	assert.Equal(t, []string{"build", "--release"}, cmd.Args)
	assert.Equal(t, filepath.Join(root, "src", "rust", "engine"), cmd.Dir)

	py, ok := envValue(cmd.Env, EnvPy)
	require.True(t, ok, "PY must be set")
	assert.Equal(t, "/usr/bin/python3.11", py)

	sysExe, ok := envValue(cmd.Env, EnvPythonSysExecutable)
	require.True(t, ok, "PYTHON_SYS_EXECUTABLE must be set")
	assert.Equal(t, "/usr/bin/python3.11", sysExe)

	home, ok := envValue(cmd.Env, "HOME")
	require.True(t, ok, "inherited environment must survive")
	assert.Equal(t, "/home/user", home)
}

func TestRun_EmptyArgs(t *testing.T) {
	root := makeRepo(t)
	executor := &procexec.MockExecutor{}

	s := &Shim{
		Root:         root,
		InterpRunner: pythonRunner("/usr/bin/python3", "3.11.4"),
		CargoRunner:  cargoRunner("/usr/bin/cargo"),
		Executor:     executor,
		Environ:      func() []string { return nil },
	}

	require.NoError(t, s.Run(nil))
	require.Len(t, executor.Commands, 1)
	assert.Empty(t, executor.Commands[0].Args)
}

func TestRun_CargoMissing(t *testing.T) {
	root := makeRepo(t)
	executor := &procexec.MockExecutor{}

	s := &Shim{
		Root:         root,
		InterpRunner: pythonRunner("/usr/bin/python3", "3.11.4"),
		CargoRunner:  noCargoRunner(),
		Executor:     executor,
		Environ:      func() []string { return nil },
	}

	err := s.Run([]string{"build"})
	require.ErrorIs(t, err, toolchain.ErrCargoNotFound)
	assert.Contains(t, err.Error(), "cargo")
	assert.Empty(t, executor.Commands, "no handover may happen when cargo is missing")
}

func TestRun_NoInterpreter(t *testing.T) {
	root := makeRepo(t)
	executor := &procexec.MockExecutor{}

	s := &Shim{
		Root: root,
		InterpRunner: &interp.MockRunner{
			LookPathFunc: func(file string) (string, error) {
				return "", errors.New("executable file not found in $PATH")
			},
		},
		CargoRunner: cargoRunner("/usr/bin/cargo"),
		Executor:    executor,
		Environ:     func() []string { return nil },
	}

	err := s.Run([]string{"build"})
	require.ErrorIs(t, err, interp.ErrNoInterpreter)
	assert.Empty(t, executor.Commands)
}

func TestRun_ConfigCandidatesAndEnv(t *testing.T) {
	root := makeRepo(t)
	writeWrapfile(t, root, `[interpreter]
candidates = ["python3.11"]

[env]
RUST_BACKTRACE = "1"
`)

	var looked []string
	runner := pythonRunner("/usr/bin/python3.11", "3.11.4")
	inner := runner.LookPathFunc
	runner.LookPathFunc = func(file string) (string, error) {
		looked = append(looked, file)
		return inner(file)
	}

	executor := &procexec.MockExecutor{}
	s := &Shim{
		Root:         root,
		InterpRunner: runner,
		CargoRunner:  cargoRunner("/usr/bin/cargo"),
		Executor:     executor,
		Environ:      func() []string { return nil },
	}

	require.NoError(t, s.Run([]string{"check"}))
	assert.Equal(t, []string{"python3.11"}, looked)

	require.Len(t, executor.Commands, 1)
	backtrace, ok := envValue(executor.Commands[0].Env, "RUST_BACKTRACE")
	require.True(t, ok)
	assert.Equal(t, "1", backtrace)
}

func TestRun_MalformedConfig(t *testing.T) {
	root := makeRepo(t)
	writeWrapfile(t, root, "[interpreter\n")

	executor := &procexec.MockExecutor{}
	s := &Shim{
		Root:         root,
		InterpRunner: pythonRunner("/usr/bin/python3", "3.11.4"),
		CargoRunner:  cargoRunner("/usr/bin/cargo"),
		Executor:     executor,
		Environ:      func() []string { return nil },
	}

	require.Error(t, s.Run([]string{"build"}))
	assert.Empty(t, executor.Commands)
}

type fixedOpener struct {
	content string
}

func (f *fixedOpener) Open(name string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.content)), nil
}

// sha256 of "hello world".
const helloSHA256 = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestRun_DigestPinMatch(t *testing.T) {
	root := makeRepo(t)
	writeWrapfile(t, root, `[interpreter]
digest = "`+helloSHA256+`"
digest_algorithm = "sha256"
`)

	executor := &procexec.MockExecutor{}
	s := &Shim{
		Root:         root,
		InterpRunner: pythonRunner("/usr/bin/python3", "3.11.4"),
		CargoRunner:  cargoRunner("/usr/bin/cargo"),
		Opener:       &fixedOpener{content: "hello world"},
		Executor:     executor,
		Environ:      func() []string { return nil },
	}

	require.NoError(t, s.Run([]string{"build"}))
	assert.Len(t, executor.Commands, 1)
}

func TestRun_DigestPinMismatch(t *testing.T) {
	root := makeRepo(t)
	writeWrapfile(t, root, `[interpreter]
digest = "`+helloSHA256+`"
digest_algorithm = "sha256"
`)

	executor := &procexec.MockExecutor{}
	s := &Shim{
		Root:         root,
		InterpRunner: pythonRunner("/usr/bin/python3", "3.11.4"),
		CargoRunner:  cargoRunner("/usr/bin/cargo"),
		Opener:       &fixedOpener{content: "tampered interpreter"},
		Executor:     executor,
		Environ:      func() []string { return nil },
	}

	err := s.Run([]string{"build"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
	assert.Empty(t, executor.Commands, "no handover may happen on a pin mismatch")
}

func TestRun_UnknownDigestAlgorithm(t *testing.T) {
	root := makeRepo(t)
	writeWrapfile(t, root, `[interpreter]
digest = "`+helloSHA256+`"
digest_algorithm = "md5"
`)

	s := &Shim{
		Root:         root,
		InterpRunner: pythonRunner("/usr/bin/python3", "3.11.4"),
		CargoRunner:  cargoRunner("/usr/bin/cargo"),
		Executor:     &procexec.MockExecutor{},
		Environ:      func() []string { return nil },
	}

	require.Error(t, s.Run([]string{"build"}))
}

func TestChildEnvOverridesExisting(t *testing.T) {
	base := []string{"PY=/old/python", "HOME=/home/user"}
	env := childEnv(base, "/usr/bin/python3", nil)

	count := 0
	for _, kv := range env {
		if strings.HasPrefix(kv, "PY=") {
			count++
			assert.Equal(t, "PY=/usr/bin/python3", kv)
		}
	}
	assert.Equal(t, 1, count, "PY must not be duplicated")

	// The caller's slice is left alone.
	assert.Equal(t, "PY=/old/python", base[0])
}
