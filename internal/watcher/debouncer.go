package watcher

import (
	"sync"
	"time"
)

// BatchDebouncer collects events and emits them together once no new
// event has arrived for the configured delay.
type BatchDebouncer struct {
	delay  time.Duration
	emit   func([]Event)
	mu     sync.Mutex
	timer  *time.Timer
	events []Event
}

// NewBatchDebouncer creates a new batch debouncer
func NewBatchDebouncer(delay time.Duration, emit func([]Event)) *BatchDebouncer {
	return &BatchDebouncer{delay: delay, emit: emit}
}

// Add queues an event and restarts the quiet period.
func (b *BatchDebouncer) Add(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.fire)
}

func (b *BatchDebouncer) fire() {
	b.mu.Lock()
	events := b.events
	b.events = nil
	b.timer = nil
	b.mu.Unlock()

	if len(events) > 0 && b.emit != nil {
		b.emit(events)
	}
}

// Cancel drops pending events without emitting them.
func (b *BatchDebouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.events = nil
}

// Flush emits pending events immediately.
func (b *BatchDebouncer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	b.fire()
}

// Pending returns the number of events waiting to be emitted.
func (b *BatchDebouncer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
