package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vertti/cargowrap/pkg/check"
	"github.com/vertti/cargowrap/pkg/digest"
	"github.com/vertti/cargowrap/pkg/interp"
	"github.com/vertti/cargowrap/pkg/output"
	"github.com/vertti/cargowrap/pkg/repo"
	"github.com/vertti/cargowrap/pkg/shim"
	"github.com/vertti/cargowrap/pkg/toolchain"
	"github.com/vertti/cargowrap/pkg/wrapfile"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that this environment can build the engine",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// ErrChecksFailed is returned when any doctor check fails.
// The returned error causes a non-zero exit in main.
var ErrChecksFailed = errors.New("checks failed")

func runDoctor(cmd *cobra.Command, args []string) error {
	rootResult := check.Result{Name: "repository root"}
	root, err := repo.Find(&repo.RealProbe{})
	if err != nil {
		output.PrintResult(rootResult.Failf("%v", err))
		return ErrChecksFailed
	}
	rootResult.Status = check.StatusOK
	rootResult.AddDetailf("path: %s", root)
	rootResult.AddDetailf("engine: %s", repo.EngineDir(root))
	output.PrintResult(rootResult)

	cfgResult := check.Result{Name: "config"}
	cfg, err := wrapfile.Load(root)
	if err != nil {
		output.PrintResult(cfgResult.Failf("%v", err))
		return ErrChecksFailed
	}

	resolver, err := shim.ResolverFromConfig(cfg, &interp.RealRunner{})
	if err != nil {
		output.PrintResult(cfgResult.Failf("%v", err))
		return ErrChecksFailed
	}

	algorithm := digest.AlgorithmBLAKE3
	if cfg.Interpreter.Digest != "" {
		algorithm, err = shim.PinAlgorithm(cfg.Interpreter.DigestAlgorithm)
		if err != nil {
			output.PrintResult(cfgResult.Failf("%v", err))
			return ErrChecksFailed
		}
	}

	checkers := []check.Checker{
		&toolchain.Check{Runner: &toolchain.RealRunner{}},
		&toolchain.FileCheck{EngineDir: repo.EngineDir(root)},
		&interp.Check{Resolver: resolver},
	}
	if pin, ok := digestCheck(cfg, resolver, algorithm); ok {
		checkers = append(checkers, pin)
	}

	failed := false
	for _, c := range checkers {
		result := c.Run()
		output.PrintResult(result)
		if !result.OK() {
			failed = true
		}
	}

	if failed {
		return ErrChecksFailed
	}
	return nil
}

// digestCheck builds the pin check when the config carries one. The
// interpreter is resolved again here; the probe is cheap and doctor
// favors independent checks over shared state.
func digestCheck(cfg wrapfile.Config, resolver *interp.Resolver, algorithm digest.Algorithm) (check.Checker, bool) {
	if cfg.Interpreter.Digest == "" {
		return nil, false
	}

	intp, err := resolver.Resolve()
	if err != nil {
		// The interpreter check already reports this failure.
		return nil, false
	}

	return &digest.Check{
		Path:      intp.Path,
		Expected:  cfg.Interpreter.Digest,
		Algorithm: algorithm,
	}, true
}
