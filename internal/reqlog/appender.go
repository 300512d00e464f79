package reqlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/afero"

	siteerrors "website/internal/errors"
	"website/internal/slogutil"
)

// DefaultQueueSize is the number of lines buffered ahead of the writer goroutine.
const DefaultQueueSize = 256

// Appender appends lines to a file from a single background goroutine.
// Append never blocks the caller and never reports an error to it; a failed
// write prints FailureMessage on the console and a warning on the logger.
type Appender struct {
	fs      afero.Fs
	path    string
	console io.Writer
	logger  *slog.Logger

	queue chan string
	done  chan struct{}

	// outstanding counts lines accepted by Append and not yet written.
	countMu     sync.Mutex
	idle        *sync.Cond
	outstanding int

	mu      sync.RWMutex
	closed  bool
	writeMu sync.Mutex
}

// AppenderOption configures an Appender.
type AppenderOption func(*Appender)

// WithQueueSize sets the queue capacity. Sizes below one become one.
func WithQueueSize(n int) AppenderOption {
	return func(a *Appender) {
		if n < 1 {
			n = 1
		}
		a.queue = make(chan string, n)
	}
}

// WithLogger sets the diagnostics logger for write failures.
func WithLogger(logger *slog.Logger) AppenderOption {
	return func(a *Appender) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAppender starts an appender writing to path on fs.
// console receives FailureMessage when a write fails.
func NewAppender(fs afero.Fs, path string, console io.Writer, opts ...AppenderOption) *Appender {
	a := &Appender{
		fs:      fs,
		path:    path,
		console: Console(console),
		logger:  slogutil.NewDiscardLogger(),
		queue:   make(chan string, DefaultQueueSize),
		done:    make(chan struct{}),
	}
	a.idle = sync.NewCond(&a.countMu)
	for _, opt := range opts {
		opt(a)
	}

	go a.run()
	return a
}

// Path returns the file the appender writes to.
func (a *Appender) Path() string { return a.path }

// Append schedules line for writing. A full queue or a closed appender
// hands the line to a detached goroutine instead of dropping it.
func (a *Appender) Append(line string) {
	a.begin()

	a.mu.RLock()
	if !a.closed {
		select {
		case a.queue <- line:
			a.mu.RUnlock()
			return
		default:
		}
	}
	a.mu.RUnlock()

	go func() {
		defer a.end()
		a.write(line)
	}()
}

// Flush blocks until every line appended so far has been written or has failed.
func (a *Appender) Flush() {
	a.countMu.Lock()
	for a.outstanding > 0 {
		a.idle.Wait()
	}
	a.countMu.Unlock()
}

// Close stops accepting queued lines, drains the queue and waits for
// detached writes. It is safe to call more than once.
func (a *Appender) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	<-a.done
	a.Flush()
	return nil
}

func (a *Appender) begin() {
	a.countMu.Lock()
	a.outstanding++
	a.countMu.Unlock()
}

func (a *Appender) end() {
	a.countMu.Lock()
	a.outstanding--
	if a.outstanding == 0 {
		a.idle.Broadcast()
	}
	a.countMu.Unlock()
}

func (a *Appender) run() {
	defer close(a.done)
	for line := range a.queue {
		a.write(line)
		a.end()
	}
}

func (a *Appender) write(line string) {
	if err := a.appendLine(line); err != nil {
		_, _ = fmt.Fprintln(a.console, FailureMessage)

		serr := siteerrors.New(siteerrors.LogWriteFailed, "appending request log", err)
		a.logger.Warn("Request log append failed",
			"path", a.path,
			"code", string(serr.Code),
			"error", serr.Error(),
		)
	}
}

// appendLine holds writeMu so detached writes never interleave with the queue.
func (a *Appender) appendLine(line string) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	f, err := a.fs.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
