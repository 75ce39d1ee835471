// Package shim wires root resolution, interpreter discovery, and the
// cargo guard into the final process handover.
package shim

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/vertti/cargowrap/pkg/digest"
	"github.com/vertti/cargowrap/pkg/interp"
	"github.com/vertti/cargowrap/pkg/procexec"
	"github.com/vertti/cargowrap/pkg/repo"
	"github.com/vertti/cargowrap/pkg/toolchain"
	"github.com/vertti/cargowrap/pkg/version"
	"github.com/vertti/cargowrap/pkg/wrapfile"
)

// Both variables carry the interpreter path. Different build stages
// read different names, so the two are kept distinct.
const (
	EnvPy                  = "PY"
	EnvPythonSysExecutable = "PYTHON_SYS_EXECUTABLE"
)

// Shim forwards a cargo invocation into the engine subtree.
// Zero-value fields fall back to production implementations.
type Shim struct {
	Root         string // resolved repository root; empty means resolve via Probe
	Probe        repo.Probe
	InterpRunner interp.Runner
	CargoRunner  toolchain.Runner
	Opener       digest.Opener
	Executor     procexec.Executor
	Environ      func() []string
}

// Run forwards args verbatim to cargo inside the engine subtree.
// On unix it does not return on success: the process has been replaced.
//
// The sequence is strictly linear: resolve root, load config, resolve
// interpreter, guard cargo, build the child environment, hand over.
// The guard fires before the working directory or any environment for
// the child exists, so a failed run leaves the process untouched.
func (s *Shim) Run(args []string) error {
	root := s.Root
	if root == "" {
		var err error
		root, err = repo.Find(s.probe())
		if err != nil {
			return err
		}
	}

	cfg, err := wrapfile.Load(root)
	if err != nil {
		return err
	}

	resolver, err := ResolverFromConfig(cfg, s.interpRunner())
	if err != nil {
		return err
	}
	intp, err := resolver.Resolve()
	if err != nil {
		return err
	}

	if cfg.Interpreter.Digest != "" {
		algorithm, err := PinAlgorithm(cfg.Interpreter.DigestAlgorithm)
		if err != nil {
			return err
		}
		if err := digest.Verify(s.opener(), intp.Path, algorithm, cfg.Interpreter.Digest); err != nil {
			return err
		}
	}

	cargoPath, err := toolchain.FindCargo(s.cargoRunner())
	if err != nil {
		return err
	}

	return s.executor().Exec(procexec.Command{
		Path: cargoPath,
		Args: args,
		Env:  childEnv(s.environ()(), intp.Path, cfg.Env),
		Dir:  repo.EngineDir(root),
	})
}

// ResolverFromConfig maps the repo config onto an interpreter resolver.
func ResolverFromConfig(cfg wrapfile.Config, runner interp.Runner) (*interp.Resolver, error) {
	minVersion, err := version.ParseOptional(cfg.Interpreter.MinVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid interpreter.min_version: %w", err)
	}
	maxVersion, err := version.ParseOptional(cfg.Interpreter.MaxVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid interpreter.max_version: %w", err)
	}

	return &interp.Resolver{
		Candidates:   cfg.Interpreter.Candidates,
		MinVersion:   minVersion,
		MaxVersion:   maxVersion,
		MatchPattern: cfg.Interpreter.Match,
		Runner:       runner,
	}, nil
}

// PinAlgorithm validates the configured digest algorithm name.
func PinAlgorithm(name string) (digest.Algorithm, error) {
	switch name {
	case "", string(digest.AlgorithmBLAKE3):
		return digest.AlgorithmBLAKE3, nil
	case string(digest.AlgorithmSHA256):
		return digest.AlgorithmSHA256, nil
	default:
		return "", fmt.Errorf("unknown interpreter.digest_algorithm %q", name)
	}
}

// childEnv builds the complete child environment: the inherited
// environment plus the two interpreter variables and any configured
// extras. The wrapper's own environment is never mutated.
func childEnv(base []string, interpPath string, extra map[string]string) []string {
	env := append([]string(nil), base...)
	env = setEnv(env, EnvPy, interpPath)
	env = setEnv(env, EnvPythonSysExecutable, interpPath)

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = setEnv(env, k, extra[k])
	}
	return env
}

// setEnv overrides an existing KEY= entry or appends a new one.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

func (s *Shim) probe() repo.Probe {
	if s.Probe != nil {
		return s.Probe
	}
	return &repo.RealProbe{}
}

func (s *Shim) interpRunner() interp.Runner {
	if s.InterpRunner != nil {
		return s.InterpRunner
	}
	return &interp.RealRunner{}
}

func (s *Shim) cargoRunner() toolchain.Runner {
	if s.CargoRunner != nil {
		return s.CargoRunner
	}
	return &toolchain.RealRunner{}
}

func (s *Shim) opener() digest.Opener {
	if s.Opener != nil {
		return s.Opener
	}
	return &digest.RealOpener{}
}

func (s *Shim) executor() procexec.Executor {
	if s.Executor != nil {
		return s.Executor
	}
	return &procexec.RealExecutor{}
}

func (s *Shim) environ() func() []string {
	if s.Environ != nil {
		return s.Environ
	}
	return os.Environ
}
