package main

import (
	"github.com/spf13/cobra"

	"github.com/vertti/cargowrap/pkg/shim"
)

var execCmd = &cobra.Command{
	Use:   "exec [cargo arguments...]",
	Short: "Forward a cargo invocation into the engine subtree",
	Long: `Resolves the repository root and a Python interpreter, exports
PY and PYTHON_SYS_EXECUTABLE for the engine build, and replaces this
process with cargo running in src/rust/engine. All arguments are
forwarded verbatim; cargowrap defines no flags of its own here.`,
	// Arguments belong to cargo, not to us.
	DisableFlagParsing: true,
	RunE:               runForward,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func runForward(cmd *cobra.Command, args []string) error {
	args = stripLeadingDashDash(args)
	s := &shim.Shim{}
	return s.Run(args)
}

// stripLeadingDashDash removes a single leading "--" separator, the
// conventional way to fence off cargo's flags from the wrapper's.
func stripLeadingDashDash(args []string) []string {
	if len(args) > 0 && args[0] == "--" {
		return args[1:]
	}
	return args
}
