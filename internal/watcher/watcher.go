// Package watcher polls template directories and reports changes after a quiet period.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"website/internal/config"
	"website/internal/slogutil"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

// Event represents a file system event
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ChangeHandler is called once per debounced batch of changes.
type ChangeHandler func(events []Event)

// Config contains watcher configuration
type Config struct {
	Enabled        bool
	PollInterval   time.Duration
	Debounce       time.Duration
	IgnorePatterns []string
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		PollInterval: time.Second,
		Debounce:     250 * time.Millisecond,
		IgnorePatterns: []string{
			"*.swp",
			"*.tmp",
			"*~",
			".#*",
		},
	}
}

// FromSiteConfig converts the watch section of the site config.
func FromSiteConfig(c config.WatchConfig) Config {
	cfg := DefaultConfig()
	cfg.Enabled = c.Enabled
	if c.PollIntervalMs > 0 {
		cfg.PollInterval = time.Duration(c.PollIntervalMs) * time.Millisecond
	}
	if c.DebounceMs >= 0 {
		cfg.Debounce = time.Duration(c.DebounceMs) * time.Millisecond
	}
	return cfg
}

type fileState struct {
	modTime time.Time
	size    int64
}

// Watcher polls a set of directories on an afero filesystem.
// Polling keeps it working on every filesystem afero offers, in-memory included.
type Watcher struct {
	fs      afero.Fs
	dirs    []string
	config  Config
	logger  *slog.Logger
	handler ChangeHandler
	batch   *BatchDebouncer

	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	files   map[string]fileState
	started bool
	wg      sync.WaitGroup
}

// New creates a watcher over dirs. Nothing is polled until Start.
func New(fs afero.Fs, dirs []string, cfg Config, logger *slog.Logger, handler ChangeHandler) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	w := &Watcher{
		fs:      fs,
		dirs:    dirs,
		config:  cfg,
		logger:  logger,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}
	w.batch = NewBatchDebouncer(cfg.Debounce, w.emit)
	return w
}

// Start takes the initial snapshot and begins polling.
func (w *Watcher) Start() error {
	if !w.config.Enabled {
		w.logger.Debug("Template watcher is disabled")
		return nil
	}

	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.files = w.scan()
	count := len(w.files)
	w.mu.Unlock()

	w.logger.Info("Watching templates",
		"dirs", strings.Join(w.dirs, ","),
		"files", count,
		"pollInterval", w.pollInterval().String(),
		"debounce", w.config.Debounce.String(),
	)

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop stops polling and drops any pending batch.
func (w *Watcher) Stop() error {
	w.cancel()
	w.wg.Wait()
	w.batch.Cancel()
	return nil
}

func (w *Watcher) pollInterval() time.Duration {
	if w.config.PollInterval <= 0 {
		return time.Second
	}
	return w.config.PollInterval
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.checkChanges()
		case <-w.ctx.Done():
			return
		}
	}
}

// checkChanges rescans and feeds any differences to the debouncer.
func (w *Watcher) checkChanges() {
	current := w.scan()

	w.mu.Lock()
	events := diff(w.files, current, time.Now())
	w.files = current
	w.mu.Unlock()

	for _, e := range events {
		w.batch.Add(e)
	}
}

func (w *Watcher) emit(events []Event) {
	if w.ctx.Err() != nil {
		return
	}
	w.logger.Debug("Template changes detected", "eventCount", len(events))
	if w.handler != nil {
		w.handler(events)
	}
}

func (w *Watcher) scan() map[string]fileState {
	files := make(map[string]fileState)
	for _, dir := range w.dirs {
		_ = afero.Walk(w.fs, dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				// Missing or unreadable directories are simply not watched.
				return nil
			}
			if info.IsDir() || w.IsIgnored(path) {
				return nil
			}
			files[path] = fileState{modTime: info.ModTime(), size: info.Size()}
			return nil
		})
	}
	return files
}

func diff(before, after map[string]fileState, now time.Time) []Event {
	var events []Event
	for path, st := range after {
		prev, ok := before[path]
		switch {
		case !ok:
			events = append(events, Event{Type: EventCreate, Path: path, Timestamp: now})
		case !prev.modTime.Equal(st.modTime) || prev.size != st.size:
			events = append(events, Event{Type: EventModify, Path: path, Timestamp: now})
		}
	}
	for path := range before {
		if _, ok := after[path]; !ok {
			events = append(events, Event{Type: EventDelete, Path: path, Timestamp: now})
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}

// IsIgnored checks a path's base name against the ignore patterns.
func (w *Watcher) IsIgnored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.config.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// Stats returns watcher statistics
func (w *Watcher) Stats() map[string]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	return map[string]interface{}{
		"enabled":      w.config.Enabled,
		"dirs":         len(w.dirs),
		"watchedFiles": len(w.files),
		"debounceMs":   w.config.Debounce.Milliseconds(),
	}
}
