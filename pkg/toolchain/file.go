package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/vertti/cargowrap/pkg/check"
)

const (
	// FileNameTOML is the modern toolchain pin.
	FileNameTOML = "rust-toolchain.toml"
	// FileNameBare is the legacy pin: either TOML without the extension
	// or a single channel line.
	FileNameBare = "rust-toolchain"
)

// File is a parsed rust-toolchain pin.
type File struct {
	Toolchain Pin `toml:"toolchain"`
}

// Pin is the [toolchain] table of a rust-toolchain file.
type Pin struct {
	Channel    string   `toml:"channel"`
	Components []string `toml:"components"`
	Targets    []string `toml:"targets"`
}

// ReadFile loads the toolchain pin from the engine directory. A missing
// pin returns os.ErrNotExist; callers decide whether that is fatal.
func ReadFile(engineDir string) (*File, error) {
	data, err := os.ReadFile(filepath.Join(engineDir, FileNameTOML)) //nolint:gosec // path derives from the resolved repo root
	if err == nil {
		return parseTOML(data, FileNameTOML)
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	data, err = os.ReadFile(filepath.Join(engineDir, FileNameBare)) //nolint:gosec // path derives from the resolved repo root
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(string(data))
	if strings.Contains(content, "[toolchain]") {
		return parseTOML(data, FileNameBare)
	}

	// Legacy format: the file is just the channel name.
	if content == "" || strings.ContainsAny(content, "\n") {
		return nil, fmt.Errorf("%s: expected a single channel line, got %d bytes", FileNameBare, len(data))
	}
	return &File{Toolchain: Pin{Channel: content}}, nil
}

func parseTOML(data []byte, name string) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if f.Toolchain.Channel == "" {
		return nil, fmt.Errorf("%s: no toolchain.channel", name)
	}
	return &f, nil
}

// FileCheck reports the state of the toolchain pin. An absent pin is OK
// (the build just uses the default toolchain); a malformed one is not.
type FileCheck struct {
	EngineDir string
}

// Run executes the toolchain file check.
func (c *FileCheck) Run() check.Result {
	result := check.Result{Name: "toolchain"}

	f, err := ReadFile(c.EngineDir)
	if err != nil {
		if os.IsNotExist(err) {
			result.Status = check.StatusOK
			result.AddDetail("channel: not pinned")
			return result
		}
		return result.Failf("%v", err)
	}

	result.Status = check.StatusOK
	result.AddDetailf("channel: %s", f.Toolchain.Channel)
	if len(f.Toolchain.Components) > 0 {
		result.AddDetailf("components: %s", strings.Join(f.Toolchain.Components, ", "))
	}
	return result
}
