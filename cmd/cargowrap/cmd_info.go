package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vertti/cargowrap/pkg/interp"
	"github.com/vertti/cargowrap/pkg/repo"
	"github.com/vertti/cargowrap/pkg/shim"
	"github.com/vertti/cargowrap/pkg/toolchain"
	"github.com/vertti/cargowrap/pkg/wrapfile"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the resolved root, interpreter, and toolchain",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	root, err := repo.Find(&repo.RealProbe{})
	if err != nil {
		return err
	}
	engineDir := repo.EngineDir(root)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "root:        %s\n", root)
	fmt.Fprintf(out, "engine:      %s\n", engineDir)

	if f, err := toolchain.ReadFile(engineDir); err == nil {
		fmt.Fprintf(out, "toolchain:   %s\n", f.Toolchain.Channel)
	} else {
		fmt.Fprintf(out, "toolchain:   not pinned\n")
	}

	cargoRunner := &toolchain.RealRunner{}
	if path, err := toolchain.FindCargo(cargoRunner); err == nil {
		fmt.Fprintf(out, "cargo:       %s\n", path)
		if v, _, err := toolchain.CargoVersion(cargoRunner, path); err == nil {
			fmt.Fprintf(out, "cargo ver:   %s\n", v)
		}
	} else {
		fmt.Fprintf(out, "cargo:       not found\n")
	}

	cfg, err := wrapfile.Load(root)
	if err != nil {
		return err
	}
	resolver, err := shim.ResolverFromConfig(cfg, &interp.RealRunner{})
	if err != nil {
		return err
	}
	if intp, err := resolver.Resolve(); err == nil {
		fmt.Fprintf(out, "interpreter: %s\n", intp.Path)
		fmt.Fprintf(out, "python ver:  %s (%s)\n", intp.Version, intp.Implementation)
	} else {
		fmt.Fprintf(out, "interpreter: not found\n")
	}

	return nil
}
