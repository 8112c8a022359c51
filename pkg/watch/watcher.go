// Package watch monitors a source tree and triggers re-analysis when files
// change. Events are debounced so editor save bursts and branch switches
// collapse into a single callback.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/caliper-sh/caliper/pkg/config"
	"github.com/caliper-sh/caliper/pkg/language"
)

// Watcher monitors a directory tree for source file changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	cfg       *config.Config
	debounce  time.Duration
	root      string
	callback  func(changed []string)
	mu        sync.Mutex
	pending   map[string]time.Time
}

// New creates a watcher rooted at root. A non-positive debounce falls back
// to 500ms.
func New(root string, cfg *config.Config, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		cfg:       cfg,
		debounce:  debounce,
		root:      root,
		pending:   make(map[string]time.Time),
	}, nil
}

// OnChange registers the function invoked with each debounced batch of
// changed paths. Must be called before Start.
func (w *Watcher) OnChange(cb func(changed []string)) {
	w.callback = cb
}

// Start watches the tree until ctx is cancelled. It returns ctx.Err() on
// cancellation and nil if the underlying watcher closes.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtrees are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		for _, excluded := range w.cfg.Exclude.Dirs {
			if d.Name() == excluded {
				return filepath.SkipDir
			}
		}
		return w.fsWatcher.Add(path)
	})
	if err != nil {
		return err
	}

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			// Event overflow or a vanished watch; whatever made it into
			// pending still flushes on the next debounce pass.
		}
	}
}

// handleEvent records a changed source file, and extends the watch into
// directories created after Start.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	path := event.Name

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			for _, excluded := range w.cfg.Exclude.Dirs {
				if filepath.Base(path) == excluded {
					return
				}
			}
			w.fsWatcher.Add(path)
			return
		}
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	if w.cfg.ShouldExclude(filepath.ToSlash(rel)) {
		return
	}

	if language.ClassifyPath(path) == language.Unknown {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// processDebounced periodically flushes pending changes that have been
// stable for the debounce period.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending invokes the callback with every path that settled. The
// callback runs outside the lock and synchronously, so changes arriving
// during a slow re-analysis accumulate for the next batch instead of
// piling up concurrent runs.
func (w *Watcher) processPending() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if len(ready) == 0 {
		return
	}
	sort.Strings(ready)

	if w.callback != nil {
		w.callback(ready)
	}
}

// Stop closes the underlying filesystem watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchList returns the directories currently being watched.
func (w *Watcher) WatchList() []string {
	return w.fsWatcher.WatchList()
}
