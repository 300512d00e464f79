package reqlog

import (
	"io"
	"sync"
)

// lockedWriter serializes writes to a shared console.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// Console wraps w so concurrent writers never interleave. Wrapping an
// already wrapped writer returns it unchanged, so the Logger and the
// Appender given the same Console share one lock. A nil w discards.
func Console(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	if lw, ok := w.(*lockedWriter); ok {
		return lw
	}
	return &lockedWriter{w: w}
}
