// Package wrapfile loads the optional per-repo wrapper config.
package wrapfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the config file expected at the repository root.
const FileName = ".cargowrap.toml"

// Config is the parsed wrapper config. The zero value is a valid
// configuration meaning "all defaults".
type Config struct {
	Interpreter Interpreter       `toml:"interpreter"`
	Env         map[string]string `toml:"env"` // extra entries for the child environment
}

// Interpreter configures interpreter resolution and pinning.
type Interpreter struct {
	Candidates      []string `toml:"candidates"`
	MinVersion      string   `toml:"min_version"`
	MaxVersion      string   `toml:"max_version"`
	Match           string   `toml:"match"`
	Digest          string   `toml:"digest"`
	DigestAlgorithm string   `toml:"digest_algorithm"` // "blake3" (default) or "sha256"
}

// Load reads the config from the repository root. A missing file yields
// the zero Config; a malformed one is a hard error, never silently
// ignored.
func Load(root string) (Config, error) {
	path := filepath.Join(root, FileName)

	data, err := os.ReadFile(path) //nolint:gosec // path derives from the resolved repo root
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", FileName, err)
	}
	return cfg, nil
}
