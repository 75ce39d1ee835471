// Package interp locates a Python interpreter suitable for the engine build.
package interp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/vertti/cargowrap/pkg/check"
	"github.com/vertti/cargowrap/pkg/version"
)

// DefaultTimeout bounds a single interpreter probe.
const DefaultTimeout = 10 * time.Second

// DefaultCandidates are tried in order when no candidate list is configured.
var DefaultCandidates = []string{"python3", "python"}

// DefaultMinVersion is the interpreter floor when none is configured.
var DefaultMinVersion = version.Version{Major: 3, Minor: 7}

// ErrNoInterpreter is returned when no candidate passes the gates.
var ErrNoInterpreter = errors.New("no suitable python interpreter found")

// probeProgram makes the interpreter describe itself. Asking the binary
// (rather than parsing `--version` text) survives wrapper scripts and
// pyenv shims: sys.executable is the real path the build must link against.
const probeProgram = `import json, platform, sys
print(json.dumps({"executable": sys.executable, "version": "%d.%d.%d" % sys.version_info[:3], "implementation": platform.python_implementation()}))`

// Interpreter is a resolved Python interpreter.
type Interpreter struct {
	Path           string // absolute path reported by the interpreter itself
	Version        version.Version
	Implementation string // e.g. "CPython", "PyPy"
}

// Resolver tries candidate interpreter names in order and returns the
// first one that exists and passes the version gates.
type Resolver struct {
	Candidates   []string         // names tried in order (default: python3, python)
	MinVersion   *version.Version // inclusive floor (default: 3.7)
	MaxVersion   *version.Version // exclusive ceiling
	MatchPattern string           // regex matched against "<implementation> <version>"
	Timeout      time.Duration    // per-probe timeout (default: 10s)
	Runner       Runner           // injected for testing
}

// Resolve returns the first acceptable interpreter. The returned error
// wraps ErrNoInterpreter and lists why each candidate was rejected.
func (r *Resolver) Resolve() (Interpreter, error) {
	candidates := r.Candidates
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	minVersion := r.MinVersion
	if minVersion == nil {
		minVersion = &DefaultMinVersion
	}

	matchRe, err := check.CompileRegex(r.MatchPattern)
	if err != nil {
		return Interpreter{}, fmt.Errorf("invalid interpreter match pattern: %w", err)
	}

	var rejections []string
	for _, candidate := range candidates {
		interp, err := r.probe(candidate)
		if err != nil {
			rejections = append(rejections, fmt.Sprintf("%s: %v", candidate, err))
			continue
		}

		if !interp.Version.GreaterThanOrEqual(*minVersion) {
			rejections = append(rejections, fmt.Sprintf("%s: version %s below minimum %s", candidate, interp.Version, minVersion))
			continue
		}
		if r.MaxVersion != nil && !interp.Version.LessThan(*r.MaxVersion) {
			rejections = append(rejections, fmt.Sprintf("%s: version %s at or above maximum %s", candidate, interp.Version, r.MaxVersion))
			continue
		}
		if matchRe != nil {
			line := fmt.Sprintf("%s %s", interp.Implementation, interp.Version)
			if !matchRe.MatchString(line) {
				rejections = append(rejections, fmt.Sprintf("%s: %q does not match pattern %q", candidate, line, r.MatchPattern))
				continue
			}
		}

		return interp, nil
	}

	return Interpreter{}, fmt.Errorf("%w (tried %s): %s",
		ErrNoInterpreter, strings.Join(candidates, ", "), strings.Join(rejections, "; "))
}

func (r *Resolver) probe(candidate string) (Interpreter, error) {
	path, err := r.Runner.LookPath(candidate)
	if err != nil {
		return Interpreter{}, fmt.Errorf("not found in PATH")
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stdout, stderr, err := r.Runner.RunContext(ctx, path, "-c", probeProgram)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Interpreter{}, fmt.Errorf("probe timed out after %s", timeout)
		}
		if stderr != "" {
			return Interpreter{}, fmt.Errorf("probe failed: %v: %s", err, strings.TrimSpace(stderr))
		}
		return Interpreter{}, fmt.Errorf("probe failed: %v", err)
	}

	reply := strings.TrimSpace(stdout)
	if !gjson.Valid(reply) {
		return Interpreter{}, fmt.Errorf("probe returned invalid JSON: %q", reply)
	}

	executable := gjson.Get(reply, "executable").String()
	if executable == "" {
		executable = path
	}

	parsed, err := version.Parse(gjson.Get(reply, "version").String())
	if err != nil {
		return Interpreter{}, fmt.Errorf("probe returned unparseable version: %w", err)
	}

	return Interpreter{
		Path:           executable,
		Version:        parsed,
		Implementation: gjson.Get(reply, "implementation").String(),
	}, nil
}
