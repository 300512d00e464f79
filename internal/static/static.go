// Package static serves files from the site's public directory.
package static

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// IndexFile is served for a directory request ending in a slash.
const IndexFile = "index.html"

// Handler serves files under Dir on FS and hands every other request to Next.
type Handler struct {
	FS   afero.Fs
	Dir  string
	Next http.Handler
}

// Middleware returns a middleware that serves public files before the wrapped handler.
func Middleware(fs afero.Fs, dir string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return &Handler{FS: fs, Dir: dir, Next: next}
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.next(w, r)
		return
	}

	name, ok := h.lookup(r.URL.Path)
	if !ok {
		h.next(w, r)
		return
	}
	if name == "" {
		// Directory without trailing slash.
		target := r.URL.Path + "/"
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	f, err := h.FS.Open(name)
	if err != nil {
		h.next(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		h.next(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// lookup maps a URL path to a file under Dir. An empty name with ok set
// means the path is a directory holding an index and needs a trailing slash.
func (h *Handler) lookup(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	for _, seg := range strings.Split(clean, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", false
		}
	}

	name := filepath.Join(h.Dir, filepath.FromSlash(clean))
	info, err := h.FS.Stat(name)
	if err != nil {
		return "", false
	}
	if !info.IsDir() {
		return name, true
	}

	index := filepath.Join(name, IndexFile)
	if fi, err := h.FS.Stat(index); err != nil || fi.IsDir() {
		return "", false
	}
	if !strings.HasSuffix(urlPath, "/") {
		return "", true
	}
	return index, true
}

func (h *Handler) next(w http.ResponseWriter, r *http.Request) {
	if h.Next == nil {
		http.NotFound(w, r)
		return
	}
	h.Next.ServeHTTP(w, r)
}
