// Package tmpdir manages the scoped temporary directories spec.md §5
// requires: one top-level directory per build_target invocation, a
// fresh random suffix retried on name collision, and guaranteed
// removal on every exit path via a deferred cleanup.
package tmpdir

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultParent is the default parent directory new scopes are
// allocated under, matching the reference implementation's default.
const DefaultParent = "/tmp"

// Scope owns exactly one top-level temporary directory.
type Scope struct {
	Path string
}

// New allocates a fresh scope under parent (DefaultParent if empty),
// named "sputnik-<prefix>-<random suffix>". Allocation retries with a
// new random suffix on a name collision (spec.md §5).
func New(parent, prefix string) (*Scope, error) {
	if parent == "" {
		parent = DefaultParent
	}

	const maxAttempts = 16
	for attempt := 0; attempt < maxAttempts; attempt++ {
		suffix, err := randomSuffix()
		if err != nil {
			return nil, err
		}

		path := filepath.Join(parent, fmt.Sprintf("sputnik-%s-%s", prefix, suffix))

		if err := os.Mkdir(path, 0o755); err != nil {
			if os.IsExist(err) {
				continue
			}
			return nil, err
		}

		return &Scope{Path: path}, nil
	}

	return nil, fmt.Errorf("tmpdir: exhausted %d attempts allocating a scope under %s", maxAttempts, parent)
}

// Join returns a path inside the scope.
func (s *Scope) Join(parts ...string) string {
	return filepath.Join(append([]string{s.Path}, parts...)...)
}

// Close removes the scope's directory tree. Callers defer Close
// immediately after New to guarantee cleanup on every exit path,
// including failure.
func (s *Scope) Close() error {
	if s == nil || s.Path == "" {
		return nil
	}
	return os.RemoveAll(s.Path)
}

func randomSuffix() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
