package site

import (
	"bytes"
	"net/http"

	"website/internal/views"
)

// page returns a handler rendering name with a fresh context per request.
func (s *Server) page(name string, data func() map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, name, data())
	}
}

// handleBad answers GET /bad. The payload says 404 but the status is 200.
func (s *Server) handleBad(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, badResponse(), http.StatusOK)
}

// render buffers the page so a failing template never leaks partial HTML.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	var buf bytes.Buffer
	if err := s.views.Render(&buf, name, views.PageContext(data)); err != nil {
		s.writeRenderError(w, r, name, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
