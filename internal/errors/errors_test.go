package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestSiteError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      RenderFailed,
			message:   "rendering home",
			cause:     errors.New("map has no entry for key"),
			wantParts: []string{"RENDER_FAILED", "rendering home", "map has no entry for key"},
		},
		{
			name:      "without cause",
			code:      TemplateNotFound,
			message:   "no template \"missing\"",
			wantParts: []string{"TEMPLATE_NOT_FOUND", "no template"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.code, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestSiteError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("append: %w", New(LogWriteFailed, "append server.log", cause))

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through SiteError")
	}
	if got := CodeOf(err); got != LogWriteFailed {
		t.Errorf("CodeOf() = %v, want %v", got, LogWriteFailed)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{TemplateNotFound, http.StatusInternalServerError},
		{RenderFailed, http.StatusInternalServerError},
		{ConfigInvalid, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.code); got != tt.want {
			t.Errorf("StatusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ConfigInvalid, "bad port", nil).WithDetails(map[string]int{"port": 0})
	if err.Details == nil {
		t.Error("Details should be set")
	}
}
