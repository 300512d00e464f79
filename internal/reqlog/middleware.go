package reqlog

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger writes each request's line to the console and queues it for the file.
type Logger struct {
	console  io.Writer
	appender *Appender
	now      func() time.Time
}

// NewLogger creates a request logger. A nil now uses time.Now; a nil
// appender logs to the console only.
func NewLogger(console io.Writer, appender *Appender, now func() time.Time) *Logger {
	if now == nil {
		now = time.Now
	}
	return &Logger{console: Console(console), appender: appender, now: now}
}

// Log records r and returns the entry that was written.
func (l *Logger) Log(r *http.Request) Entry {
	e := NewEntry(l.now(), r)
	line := e.Line()

	_, _ = fmt.Fprintln(l.console, line)

	if l.appender != nil {
		l.appender.Append(line)
	}
	return e
}

// Middleware logs every request, then calls next unconditionally.
func (l *Logger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.Log(r)
		next.ServeHTTP(w, r)
	})
}
