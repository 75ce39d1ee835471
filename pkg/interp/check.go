package interp

import "github.com/vertti/cargowrap/pkg/check"

// Check reports whether an acceptable interpreter can be resolved.
type Check struct {
	Resolver *Resolver
}

// Run executes the interpreter check.
func (c *Check) Run() check.Result {
	result := check.Result{Name: "interpreter"}

	interp, err := c.Resolver.Resolve()
	if err != nil {
		return result.Failf("%v", err)
	}

	result.Status = check.StatusOK
	result.AddDetailf("path: %s", interp.Path)
	result.AddDetailf("version: %s", interp.Version)
	if interp.Implementation != "" {
		result.AddDetailf("implementation: %s", interp.Implementation)
	}
	return result
}
