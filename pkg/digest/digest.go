// Package digest verifies the resolved interpreter binary against a
// configured digest pin.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/vertti/cargowrap/pkg/check"
)

// Opener abstracts file access for testability.
type Opener interface {
	Open(name string) (io.ReadCloser, error)
}

// RealOpener implements Opener using the real filesystem.
type RealOpener struct{}

func (r *RealOpener) Open(name string) (io.ReadCloser, error) {
	return os.Open(name) //nolint:gosec // path is the resolved interpreter binary
}

// Algorithm selects the hash used for the pin.
type Algorithm string

const (
	AlgorithmBLAKE3 Algorithm = "blake3"
	AlgorithmSHA256 Algorithm = "sha256"
)

// NewHasher returns a hasher for the algorithm. BLAKE3 is the default.
func (a Algorithm) NewHasher() hash.Hash {
	if a == AlgorithmSHA256 {
		return sha256.New()
	}
	return blake3.New()
}

// Both algorithms produce 32-byte digests.
const expectedHexLength = 64

// File hashes the named file and returns the lowercase hex digest.
func File(opener Opener, path string, algorithm Algorithm) (string, error) {
	f, err := opener.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := algorithm.NewHasher()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify compares the file's digest against the expected pin.
func Verify(opener Opener, path string, algorithm Algorithm, expected string) error {
	if _, err := hex.DecodeString(expected); err != nil {
		return fmt.Errorf("pinned digest is not valid hexadecimal")
	}
	if len(expected) != expectedHexLength {
		return fmt.Errorf("pinned digest has %d characters, expected %d", len(expected), expectedHexLength)
	}

	actual, err := File(opener, path, algorithm)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", path, err)
	}

	if actual != strings.ToLower(expected) {
		return fmt.Errorf("digest mismatch for %s: expected %s, actual %s", path, expected, actual)
	}
	return nil
}

// Check verifies a digest pin for the doctor command.
type Check struct {
	Path      string
	Expected  string
	Algorithm Algorithm
	Opener    Opener
}

// Run executes the digest check.
func (c *Check) Run() check.Result {
	result := check.Result{Name: "interpreter digest"}

	opener := c.Opener
	if opener == nil {
		opener = &RealOpener{}
	}

	if err := Verify(opener, c.Path, c.Algorithm, c.Expected); err != nil {
		return result.Failf("%v", err)
	}

	algorithm := c.Algorithm
	if algorithm == "" {
		algorithm = AlgorithmBLAKE3
	}
	result.Status = check.StatusOK
	result.AddDetailf("algorithm: %s", algorithm)
	result.AddDetailf("digest: %s", strings.ToLower(c.Expected))
	return result
}
