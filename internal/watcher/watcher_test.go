package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Event
	d := newDebouncer(50*time.Millisecond, func(events []Event) {
		mu.Lock()
		batches = append(batches, events)
		mu.Unlock()
	})

	d.add(Event{Path: "/a.json", Op: "create"})
	d.add(Event{Path: "/a.json", Op: "write"})
	d.add(Event{Path: "/a.json", Op: "write"})
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	if len(batches[0]) != 3 {
		t.Fatalf("expected 3 events in the batch, got %v", batches[0])
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	var calls atomic.Int32
	d := newDebouncer(50*time.Millisecond, func([]Event) { calls.Add(1) })

	d.add(Event{Path: "/a.json", Op: "write"})
	d.stop()
	d.add(Event{Path: "/a.json", Op: "write"})
	time.Sleep(200 * time.Millisecond)

	if calls.Load() != 0 {
		t.Fatalf("expected no flush after stop, got %d", calls.Load())
	}
}

func TestOpName(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want string
	}{
		{fsnotify.Create, "create"},
		{fsnotify.Write, "write"},
		{fsnotify.Create | fsnotify.Write, "create"},
		{fsnotify.Remove, "remove"},
		{fsnotify.Rename, "rename"},
		{fsnotify.Chmod, ""},
	}
	for _, tt := range tests {
		if got := opName(tt.op); got != tt.want {
			t.Errorf("opName(%v) = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestWatcher_ReportsDocumentChanges(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "swagger.json")
	other := filepath.Join(dir, "notes.txt")
	os.WriteFile(doc, []byte("{}"), 0644)

	changes := make(chan []Event, 4)
	w, err := New([]string{doc}, 50*time.Millisecond, func(events []Event) { changes <- events }, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	// Give fsnotify time to register the directory.
	time.Sleep(100 * time.Millisecond)

	os.WriteFile(other, []byte("ignored"), 0644)
	os.WriteFile(doc, []byte(`{"openapi":"3.0.1"}`), 0644)

	select {
	case events := <-changes:
		for _, e := range events {
			if filepath.Base(e.Path) != "swagger.json" {
				t.Errorf("unexpected event for %s", e.Path)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "missing", "swagger.json")}, time.Millisecond, func([]Event) {}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(context.Background()); err == nil {
		t.Fatal("expected error watching a missing directory")
	}
}

func TestPoll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		Poll(ctx, 10*time.Millisecond, func(context.Context) error {
			if calls.Add(1) == 2 {
				return errors.New("transient")
			}
			return nil
		}, zerolog.Nop())
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for calls.Load() < 4 {
		select {
		case <-deadline:
			t.Fatalf("expected polling to continue after an error, got %d calls", calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
