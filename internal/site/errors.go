package site

import (
	"encoding/json"
	"net/http"

	siteerrors "website/internal/errors"
)

// WriteJSON writes data as a compact JSON body with the given status.
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeRenderError logs a failed render and sends the matching status.
// The error detail stays in the diagnostics log.
func (s *Server) writeRenderError(w http.ResponseWriter, r *http.Request, page string, err error) {
	code := siteerrors.CodeOf(err)
	s.logger.ErrorContext(r.Context(), "Render failed",
		"page", page,
		"code", string(code),
		"error", err.Error(),
	)
	status := siteerrors.StatusFor(code)
	http.Error(w, http.StatusText(status), status)
}
