package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vertti/cargowrap/pkg/procexec"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	os.Args = rewriteArgs(os.Args)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *procexec.ExitError
		if errors.As(err, &exitErr) {
			// Windows spawn-and-wait path: re-raise the build's exit code.
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "cargowrap: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "cargowrap",
	Short:   "Run cargo against the repository's Rust engine",
	Long:    "Cargowrap forwards cargo invocations into src/rust/engine with the Python interpreter environment the engine build expects.",
	Version: Version,
	// Errors are reported in main so the forwarded build's own output
	// is never mixed with usage text.
	SilenceUsage:  true,
	SilenceErrors: true,
}

var knownSubcommands = []string{"exec", "doctor", "info", "help", "completion"}

// rewriteArgs routes anything that is not a wrapper subcommand to the
// forwarding path, so `cargowrap build --release` behaves exactly like
// `cargowrap exec -- build --release`.
func rewriteArgs(args []string) []string {
	if len(args) <= 1 {
		return args
	}

	first := args[1]
	if first == "--help" || first == "-h" || first == "--version" {
		return args
	}
	for _, sub := range knownSubcommands {
		if first == sub {
			return args
		}
	}

	rewritten := make([]string, 0, len(args)+1)
	rewritten = append(rewritten, args[0], "exec")
	return append(rewritten, args[1:]...)
}
