package check

// Checker is implemented by all check types.
// Each check validates one aspect of the build environment
// and returns a Result indicating success or failure.
//
// Implementations:
//   - interp.Check: resolves a usable Python interpreter
//   - toolchain.Check: verifies cargo presence and version
//   - toolchain.FileCheck: verifies the pinned toolchain file
//   - digest.Check: verifies the interpreter binary against a digest pin
type Checker interface {
	Run() Result
}
