package watcher

import (
	"sync"
	"testing"
	"time"
)

func TestBatchDebouncer_Batches(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Event
	done := make(chan struct{}, 1)

	b := NewBatchDebouncer(30*time.Millisecond, func(events []Event) {
		mu.Lock()
		batches = append(batches, events)
		mu.Unlock()
		done <- struct{}{}
	})

	b.Add(Event{Path: "a"})
	b.Add(Event{Path: "b"})
	if b.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", b.Pending())
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("batch was not emitted")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Errorf("batches = %+v", batches)
	}
}

func TestBatchDebouncer_Cancel(t *testing.T) {
	called := make(chan struct{}, 1)
	b := NewBatchDebouncer(20*time.Millisecond, func([]Event) { called <- struct{}{} })

	b.Add(Event{Path: "a"})
	b.Cancel()

	select {
	case <-called:
		t.Error("cancelled batch should not be emitted")
	case <-time.After(60 * time.Millisecond):
	}
	if b.Pending() != 0 {
		t.Errorf("Pending() = %d after Cancel", b.Pending())
	}
}

func TestBatchDebouncer_Flush(t *testing.T) {
	var got []Event
	b := NewBatchDebouncer(time.Hour, func(events []Event) { got = events })

	b.Add(Event{Path: "a"})
	b.Flush()

	if len(got) != 1 || got[0].Path != "a" {
		t.Errorf("Flush emitted %+v", got)
	}

	got = nil
	b.Flush()
	if got != nil {
		t.Error("Flush with nothing pending should not emit")
	}
}
