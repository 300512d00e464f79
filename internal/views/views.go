// Package views renders the site's pages from html/template files with shared partials.
package views

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	siteerrors "website/internal/errors"
)

// Ext is the file extension of pages and partials.
const Ext = ".tmpl"

// PageContext is the data handed to a page template.
type PageContext map[string]any

// Renderer holds one parsed template set per page. Every page set also
// contains all partials, each named after its file's base name.
type Renderer struct {
	fs          afero.Fs
	viewsDir    string
	partialsDir string
	now         func() time.Time

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock replaces time.Now for the getCurrentYear helper.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// New parses every page in viewsDir and every partial in partialsDir.
// partialsDir may be empty, or missing on disk, when the site has no partials.
func New(fs afero.Fs, viewsDir, partialsDir string, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		fs:          fs,
		viewsDir:    viewsDir,
		partialsDir: partialsDir,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	pages, err := r.load()
	if err != nil {
		return nil, err
	}
	r.pages = pages
	return r, nil
}

// Reload re-parses the templates. On error the previous set stays active.
func (r *Renderer) Reload() error {
	pages, err := r.load()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	return nil
}

// Names returns the page names in sorted order.
func (r *Renderer) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a page named name exists.
func (r *Renderer) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pages[name]
	return ok
}

// Dirs returns the directories the renderer reads from.
func (r *Renderer) Dirs() []string {
	if r.partialsDir == "" {
		return []string{r.viewsDir}
	}
	return []string{r.viewsDir, r.partialsDir}
}

// Render executes page name with data and writes the result to w.
// Nothing is written to w when execution fails.
func (r *Renderer) Render(w io.Writer, name string, data PageContext) error {
	r.mu.RLock()
	t, ok := r.pages[name]
	r.mu.RUnlock()
	if !ok {
		return siteerrors.New(siteerrors.TemplateNotFound, fmt.Sprintf("no template named %q", name), nil)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return siteerrors.New(siteerrors.RenderFailed, fmt.Sprintf("rendering %q", name), err).
			WithDetails(map[string]string{"page": name})
	}
	if _, err := buf.WriteTo(w); err != nil {
		return err
	}
	return nil
}

func (r *Renderer) load() (map[string]*template.Template, error) {
	partials, err := r.readDir(r.partialsDir, true)
	if err != nil {
		return nil, err
	}
	pageFiles, err := r.readDir(r.viewsDir, false)
	if err != nil {
		return nil, err
	}

	funcs := Funcs(r.now)
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		t := template.New(page.name).Funcs(funcs)
		for _, p := range partials {
			if _, err := t.New(p.name).Parse(p.body); err != nil {
				return nil, fmt.Errorf("parsing partial %s: %w", p.path, err)
			}
		}
		if _, err := t.Parse(page.body); err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", page.path, err)
		}
		pages[page.name] = t
	}
	return pages, nil
}

type templateFile struct {
	name string
	path string
	body string
}

func (r *Renderer) readDir(dir string, optional bool) ([]templateFile, error) {
	if dir == "" {
		return nil, nil
	}
	infos, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		if optional {
			if exists, _ := afero.DirExists(r.fs, dir); !exists {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("reading templates in %s: %w", dir, err)
	}

	var files []templateFile
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), Ext) {
			continue
		}
		p := filepath.Join(dir, info.Name())
		data, err := afero.ReadFile(r.fs, p)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", p, err)
		}
		files = append(files, templateFile{
			name: strings.TrimSuffix(info.Name(), Ext),
			path: p,
			body: string(data),
		})
	}
	return files, nil
}
