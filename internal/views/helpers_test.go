package views

import (
	"bytes"
	"html/template"
	"testing"
	"time"
)

type shout string

func (s shout) String() string { return string(s) + "!" }

func TestScreamIt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "music", "MUSIC"},
		{"second hobby", "boardgames", "BOARDGAMES"},
		{"mixed", "Music 2", "MUSIC 2"},
		{"empty", "", ""},
		{"int", 42, "42"},
		{"nil", nil, ""},
		{"bool", true, "TRUE"},
		{"stringer", shout("hi"), "HI!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScreamIt(tt.in); got != tt.want {
				t.Errorf("ScreamIt(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCurrentYear(t *testing.T) {
	year := 1999
	now := func() time.Time { return time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC) }

	if got := CurrentYear(now); got != 1999 {
		t.Errorf("CurrentYear = %d, want 1999", got)
	}
	year = 2000
	if got := CurrentYear(now); got != 2000 {
		t.Errorf("CurrentYear should be recomputed on each call, got %d", got)
	}
	if got := CurrentYear(time.Now); got != time.Now().Year() {
		t.Errorf("CurrentYear(time.Now) = %d", got)
	}
}

func TestFuncs(t *testing.T) {
	tmpl := template.Must(template.New("t").Funcs(Funcs(func() time.Time {
		return time.Date(2042, 1, 1, 0, 0, 0, 0, time.UTC)
	})).Parse(`{{getCurrentYear}} {{screamIt "a"}} {{"b" | upper}} {{trim "  c  "}}`))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "2042 A B c" {
		t.Errorf("got %q", got)
	}

	if Funcs(nil)["getCurrentYear"] == nil {
		t.Error("Funcs(nil) should fall back to time.Now")
	}
}
