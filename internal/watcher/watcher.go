// Package watcher triggers rebuilds when the input document changes: fsnotify
// for local files, polling for remote ones.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Event represents a file change event.
type Event struct {
	Path string
	Op   string // "create", "write", "remove", "rename"
}

// DefaultDebounce is how long the watcher waits for further events before
// reporting a batch.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches individual files. It watches their directories, which
// also catches editors that save by writing a temp file and renaming it.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	onChange func(events []Event)
	logger   zerolog.Logger
}

// New creates a watcher for files. onChange runs on its own goroutine, once
// per debounced batch.
func New(files []string, debounce time.Duration, onChange func(events []Event), logger zerolog.Logger) (*Watcher, error) {
	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("absolute path: %w", err)
		}
		w.files[abs] = true
	}
	return w, nil
}

// Watch blocks until ctx is done.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dirs := make(map[string]bool)
	for f := range w.files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
		dirs[dir] = true
		w.logger.Debug().Str("dir", dir).Msg("watching directory")
	}

	d := newDebouncer(w.debounce, w.onChange)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			op := opName(event.Op)
			if op == "" {
				continue
			}
			w.logger.Debug().Str("event", event.Op.String()).Str("file", event.Name).Msg("document changed")
			d.add(Event{Path: event.Name, Op: op})
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("file watcher error")
		}
	}
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	}
	return ""
}

// debouncer collects events and flushes them once no new event arrived for
// the debounce period.
type debouncer struct {
	delay time.Duration
	flush func([]Event)

	mu      sync.Mutex
	pending []Event
	timer   *time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration, flush func([]Event)) *debouncer {
	return &debouncer{delay: delay, flush: flush}
}

func (d *debouncer) add(e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = append(d.pending, e)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		pending := d.pending
		d.pending = nil
		stopped := d.stopped
		d.mu.Unlock()
		if len(pending) > 0 && !stopped {
			d.flush(pending)
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Poll calls check every interval until ctx is done. Errors are logged and
// polling continues.
func Poll(ctx context.Context, interval time.Duration, check func(context.Context) error, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := check(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("poll failed")
			}
		}
	}
}
