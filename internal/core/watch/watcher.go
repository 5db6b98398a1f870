// Package watch reports coalesced changes to a working tree.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/hay-kot/hunk/internal/core/logging"
)

// DefaultDebounce is how long the tree must be quiet before a burst of
// changes is reported.
const DefaultDebounce = 200 * time.Millisecond

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("watcher closed")

// WatchError is any failure of the underlying file watcher. Watching should
// be abandoned when one is returned.
type WatchError struct {
	Op  string
	Err error
}

func (e *WatchError) Error() string { return fmt.Sprintf("watch %s: %v", e.Op, e.Err) }
func (e *WatchError) Unwrap() error { return e.Err }

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Ignore holds doublestar patterns, relative to the root, for paths
	// whose changes are not reported.
	Ignore []string
}

// Event is one debounced burst of changes.
type Event struct {
	// Paths are the changed paths relative to the root, sorted.
	Paths []string
	At    time.Time
}

// Watcher recursively watches a directory tree.
type Watcher struct {
	root     string
	debounce time.Duration
	ignore   []string
	watcher  *fsnotify.Watcher
	log      zerolog.Logger
}

// New starts watching root and every non-hidden directory below it.
func New(root string, opts Options) (*Watcher, error) {
	for _, p := range opts.Ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, &WatchError{Op: "init", Err: fmt.Errorf("invalid ignore pattern %q", p)}
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &WatchError{Op: "init", Err: err}
	}

	w := &Watcher{
		root:     root,
		debounce: opts.Debounce,
		ignore:   opts.Ignore,
		watcher:  fw,
		log:      logging.Component("watch"),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	if err := w.addRecursive(root); err != nil {
		_ = fw.Close()
		return nil, &WatchError{Op: "add " + root, Err: err}
	}

	return w, nil
}

// Next blocks until a relevant change happens, then keeps collecting changes
// until none has arrived for the debounce interval, and reports them as one
// event.
func (w *Watcher) Next(ctx context.Context) (Event, error) {
	changed := map[string]struct{}{}

	// Wait for the first relevant change.
	for len(changed) == 0 {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return Event{}, ErrClosed
			}
			w.collect(ev, changed)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return Event{}, ErrClosed
			}
			return Event{}, &WatchError{Op: "read", Err: err}
		}
	}

	timer := time.NewTimer(w.debounce)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return Event{}, ErrClosed
			}
			if w.collect(ev, changed) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return Event{}, ErrClosed
			}
			return Event{}, &WatchError{Op: "read", Err: err}
		case <-timer.C:
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			w.log.Debug().Strs("paths", paths).Msg("tree changed")
			return Event{Paths: paths, At: time.Now()}, nil
		}
	}
}

// collect records ev if it is relevant and reports whether it was.
func (w *Watcher) collect(ev fsnotify.Event, changed map[string]struct{}) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		rel = ev.Name
	}
	rel = filepath.ToSlash(rel)

	if w.shouldIgnore(rel) {
		return false
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				w.log.Warn().Err(err).Str("dir", rel).Msg("could not watch new directory")
			}
		}
	}

	changed[rel] = struct{}{}
	return true
}

// addRecursive adds a directory and all its non-hidden subdirectories.
func (w *Watcher) addRecursive(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}

// shouldIgnore reports whether a root-relative path is noise: anything
// inside a hidden directory, hidden files, editor temp files and paths
// matching an ignore pattern.
func (w *Watcher) shouldIgnore(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}

	base := filepath.Base(rel)
	for _, suffix := range []string{".tmp", ".swp", ".swx", ".swo", "~"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	// vim probes directory writability with this name
	if base == "4913" {
		return true
	}

	for _, p := range w.ignore {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Close stops the watcher. Pending and future calls to Next return ErrClosed.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
