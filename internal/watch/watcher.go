// Package watch keeps sync pairs current while running: a filesystem
// watcher reacts to local edits and a poller notices remote ones.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/docsync/docsync/internal/logging"
	"github.com/docsync/docsync/internal/util"
)

// Event is a debounced local file change.
type Event struct {
	Path      string
	Timestamp time.Time
}

// Watcher watches a directory tree for markdown changes, coalescing bursts
// of events per file into one emission after a quiet period.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	events   chan Event
	errors   chan error
	debounce time.Duration

	mu      gosync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher rooted at root. debounce is how long a file
// must stay quiet after a change before the event is emitted.
func NewWatcher(root string, debounce time.Duration) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:     absRoot,
		watcher:  fsWatcher,
		events:   make(chan Event, 64),
		errors:   make(chan error, 8),
		debounce: debounce,
		pending:  make(map[string]*time.Timer),
	}

	if err := w.addRecursive(absRoot); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("add watches: %w", err)
	}

	return w, nil
}

// Events returns the channel of debounced change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start pumps raw filesystem events into the debouncer. It blocks until the
// context is cancelled or the underlying watcher closes.
func (w *Watcher) Start(ctx context.Context) error {
	logging.Info("watching for local changes",
		logging.Path(w.root),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// Stop cancels pending debounce timers and closes the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.mu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.shouldIgnore(path) {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		// New directories need their own watches.
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addRecursive(path); err != nil {
				select {
				case w.errors <- fmt.Errorf("watch new dir %s: %w", path, err):
				default:
				}
			}
			return
		}

	case event.Has(fsnotify.Write):
		// fall through to debounce

	default:
		// chmod, rename, remove: nothing to sync
		return
	}

	if !isMarkdown(path) {
		return
	}
	w.schedule(path)
}

// schedule (re)arms the debounce timer for a path. Repeated writes within
// the window collapse into a single emission.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.emit(path)
	})
}

func (w *Watcher) emit(path string) {
	w.mu.Lock()
	_, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	w.mu.Unlock()
	if !ok {
		return
	}

	logging.Debug("local change detected", logging.Path(path))

	select {
	case w.events <- Event{Path: path, Timestamp: time.Now()}:
	default:
		// channel full; drop the oldest and retry once
		select {
		case <-w.events:
		default:
		}
		select {
		case w.events <- Event{Path: path, Timestamp: time.Now()}:
		default:
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == util.MetadataDirName || strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}
