// Package testutil locates the repository's site content for tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
)

// ProjectRoot returns the absolute path of the repository root, where
// views/ and public/ live.
func ProjectRoot(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}

	// Navigate from internal/testutil to project root
	root := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	for _, dir := range []string{"views", "public"} {
		if _, err := os.Stat(filepath.Join(root, dir)); os.IsNotExist(err) {
			t.Fatalf("Site directory not found: %s", filepath.Join(root, dir))
		}
	}
	return root
}

// SiteFS returns the repository's site content as a read-only filesystem
// rooted at the project root, so "views" and "public" resolve as relative paths.
func SiteFS(t *testing.T) afero.Fs {
	t.Helper()
	return afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), ProjectRoot(t)))
}

// MemSite returns an in-memory filesystem holding files, keyed by slash path.
func MemSite(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, body := range files {
		if err := afero.WriteFile(fs, filepath.FromSlash(name), []byte(body), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return fs
}
