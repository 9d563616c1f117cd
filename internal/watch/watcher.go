// Package watch reports changes to the set of Flist files that made up the
// last resolution.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileOp represents the type of file operation
type FileOp int

const (
	// FileCreated indicates a watched file was (re)created
	FileCreated FileOp = iota
	// FileWritten indicates a watched file was written to
	FileWritten
	// FileRemoved indicates a watched file was removed or renamed away
	FileRemoved
)

// String returns a human-readable representation of the file operation
func (op FileOp) String() string {
	switch op {
	case FileCreated:
		return "created"
	case FileWritten:
		return "written"
	case FileRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a change to one watched file.
type Event struct {
	Path      string
	Op        FileOp
	Timestamp time.Time
}

// DefaultDebounceDelay is the default delay for coalescing rapid changes
const DefaultDebounceDelay = 100 * time.Millisecond

// Watcher watches an explicit set of files. Parent directories are watched
// rather than the files themselves so that editors which save by renaming
// a temp file over the original are still noticed.
//
// Changes are debounced as a batch: a burst of writes across several files
// yields one Event, for the last file touched.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}

	mu            sync.Mutex
	files         map[string]bool
	dirs          map[string]bool
	debounceDelay time.Duration
	pending       *time.Timer
	closed        bool
}

// New creates a Watcher for paths.
func New(paths []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:       fsw,
		events:        make(chan Event, 16),
		errors:        make(chan error, 10),
		done:          make(chan struct{}),
		files:         make(map[string]bool),
		dirs:          make(map[string]bool),
		debounceDelay: DefaultDebounceDelay,
	}

	if err := w.SetPaths(paths); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.processEvents()

	return w, nil
}

// SetPaths replaces the watched file set. Directories no longer needed are
// released and new ones added.
func (w *Watcher) SetPaths(paths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if w.dirs[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	for dir := range w.dirs {
		if !dirs[dir] {
			// Already gone when the directory was deleted; nothing to release.
			_ = w.watcher.Remove(dir)
		}
	}

	w.files = files
	w.dirs = dirs
	return nil
}

// Files returns the number of watched files.
func (w *Watcher) Files() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.files)
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Error channel full, drop the error
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	w.mu.Lock()
	watched := w.files[path]
	w.mu.Unlock()
	if !watched {
		return
	}

	var op FileOp
	switch {
	case event.Has(fsnotify.Create):
		op = FileCreated
	case event.Has(fsnotify.Write):
		op = FileWritten
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = FileRemoved
	default:
		// Ignore chmod events
		return
	}

	w.debounce(path, op)
}

// debounce restarts the batch timer; the event fires once changes settle.
func (w *Watcher) debounce(path string, op FileOp) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounceDelay, func() {
		w.sendEvent(path, op)
	})
}

func (w *Watcher) sendEvent(path string, op FileOp) {
	event := Event{
		Path:      path,
		Op:        op,
		Timestamp: time.Now(),
	}

	select {
	case w.events <- event:
	case <-w.done:
	default:
		// Events channel full; a rebuild is already queued
	}
}

// Events returns the channel for receiving file events
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel for receiving errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// SetDebounceDelay sets the debounce delay for coalescing rapid changes
func (w *Watcher) SetDebounceDelay(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounceDelay = delay
}

// Close stops the watcher and releases resources
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()

	close(w.done)
	return w.watcher.Close()
}
