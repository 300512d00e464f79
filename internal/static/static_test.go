package static

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func newPublicFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"public/help.html":        "<h1>Help</h1>\n",
		"public/css/site.css":     "body { margin: 0; }\n",
		"public/docs/index.html":  "<p>docs</p>",
		"public/.env":             "SECRET=1",
		"public/empty/keep.txt":   "",
		"secret.txt":              "outside",
		"public/data/sample.json": `{"a":1}`,
	}
	for name, body := range files {
		if err := afero.WriteFile(fs, name, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func fallthroughHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("next"))
	})
}

func TestHandler_ServesFiles(t *testing.T) {
	h := Middleware(newPublicFs(t), "public")(fallthroughHandler())

	tests := []struct {
		path        string
		body        string
		contentType string
	}{
		{"/help.html", "<h1>Help</h1>\n", "text/html"},
		{"/css/site.css", "body { margin: 0; }\n", "text/css"},
		{"/data/sample.json", `{"a":1}`, "application/json"},
		{"/docs/", "<p>docs</p>", "text/html"},
		{"/css/../help.html", "<h1>Help</h1>\n", "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want %s", ct, tt.contentType)
			}
		})
	}
}

func TestHandler_FallsThrough(t *testing.T) {
	h := Middleware(newPublicFs(t), "public")(fallthroughHandler())

	for _, p := range []string{"/", "/about", "/missing.css", "/.env", "/empty/", "/../secret.txt"} {
		t.Run(p, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
			if rec.Code != http.StatusTeapot {
				t.Errorf("%s: status = %d, want fall through", p, rec.Code)
			}
		})
	}
}

func TestHandler_MethodsAndHead(t *testing.T) {
	h := Middleware(newPublicFs(t), "public")(fallthroughHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/help.html", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("POST should fall through, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/help.html", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("HEAD: status %d, body %q", rec.Code, rec.Body.String())
	}
}

func TestHandler_DirectoryRedirect(t *testing.T) {
	h := Middleware(newPublicFs(t), "public")(fallthroughHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs?v=1", nil))
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/docs/?v=1" {
		t.Errorf("Location = %q", loc)
	}
}

func TestHandler_NilNext(t *testing.T) {
	h := &Handler{FS: newPublicFs(t), Dir: "public"}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
