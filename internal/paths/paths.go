// Package paths resolves site-relative files and directories.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Root returns the absolute site root. An empty dir means the working directory.
func Root(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	return filepath.Abs(dir)
}

// Resolve joins a site-relative path onto root. Absolute paths are returned cleaned.
func Resolve(root, p string) string {
	if p == "" {
		return root
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// IsWithin reports whether path stays inside dir once both are cleaned.
// Symlinks are resolved when they exist so a link cannot escape dir.
func IsWithin(path, dir string) bool {
	resolved := evalOrSelf(path)
	base := evalOrSelf(dir)

	rel, err := filepath.Rel(base, resolved)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}

func evalOrSelf(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	return filepath.Clean(p)
}
