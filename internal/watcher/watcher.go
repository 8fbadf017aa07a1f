// Package watcher reports changes to a single file.
//
// The watcher observes the file's directory rather than the file itself,
// since many editors save by writing a new file and renaming it over the
// old one. Bursts of events are coalesced and delivered once the file has
// been quiet for the debounce interval.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation is the kind of change observed.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates the file was created, or replaced by a rename.
	OpCreate

	// OpRemove indicates the file was deleted or renamed away.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is a debounced change to the watched file.
type Event struct {
	Path string
	Op   Operation
	Time time.Time
}

// DefaultDebounce is the quiet period before an event is delivered.
const DefaultDebounce = 100 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration. Zero delivers every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithBufferSize sets the capacity of the event channel.
func WithBufferSize(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.bufSize = n
		}
	}
}

// Watcher monitors one file for changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	debounce time.Duration
	bufSize  int

	events chan Event
	errors chan error

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	stopped sync.WaitGroup
}

// New starts watching path. The file's directory must exist.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		bufSize:  16,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(abs)
	if _, err := os.Stat(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	w.fsw = fsw
	w.events = make(chan Event, w.bufSize)
	w.errors = make(chan error, w.bufSize)
	w.stopped.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Events returns the channel of debounced events. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watch errors. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	w.stopped.Wait()
	close(w.events)
	close(w.errors)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	defer w.stopped.Done()

	var (
		timer   *time.Timer
		pending *Event
	)
	timerC := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}

	for {
		select {
		case fe, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			ev, ok := w.convert(fe)
			if !ok {
				continue
			}
			if w.debounce == 0 {
				w.send(ev)
				continue
			}
			pending = coalesce(pending, ev)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC():
			if pending != nil {
				w.send(*pending)
				pending = nil
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// convert maps an fsnotify event on the watched file to an Event.
func (w *Watcher) convert(fe fsnotify.Event) (Event, bool) {
	if filepath.Clean(fe.Name) != w.path {
		return Event{}, false
	}
	ev := Event{Path: w.path, Time: time.Now()}
	switch {
	case fe.Has(fsnotify.Remove), fe.Has(fsnotify.Rename):
		ev.Op = OpRemove
	case fe.Has(fsnotify.Create):
		ev.Op = OpCreate
	case fe.Has(fsnotify.Write):
		ev.Op = OpWrite
	default:
		return Event{}, false
	}
	return ev, true
}

// coalesce merges ev into the pending event. The file is gone after a
// remove; anything that brings it back after a remove or create reports
// as create.
func coalesce(pending *Event, ev Event) *Event {
	if pending != nil && ev.Op == OpWrite && pending.Op != OpWrite {
		ev.Op = OpCreate
	}
	return &ev
}

// send delivers ev without blocking; a full channel drops it, since the
// receiver rereads the file anyway.
func (w *Watcher) send(ev Event) {
	select {
	case w.events <- ev:
	default:
	}
}
