// Package watcher reports debounced file changes under a project tree.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PruneChecker is used by the watcher to skip directories that are never walked.
type PruneChecker interface {
	ShouldPrune(path string) bool
}

// Watcher provides recursive file system watching with debouncing.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	debouncer    *Debouncer
	pruneChecker PruneChecker
	rootDir      string
	logger       *slog.Logger
}

// NewWatcher creates a recursive file watcher on the given root directory.
// It registers every subdirectory that is not pruned.
func NewWatcher(rootDir string, pruneChecker PruneChecker, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:    fsWatcher,
		debouncer:    NewDebouncer(100 * time.Millisecond),
		pruneChecker: pruneChecker,
		rootDir:      rootDir,
		logger:       logger,
	}

	if err := w.addTree(rootDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every non-pruned directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip entries that can't be read
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.rootDir && w.pruneChecker.ShouldPrune(path) {
			return filepath.SkipDir
		}
		if watchErr := w.fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
}

// Events returns the channel that receives debounced file system events.
func (w *Watcher) Events() <-chan []DebouncedEvent {
	return w.debouncer.Output()
}

// Start begins listening for file system events. Call this in a goroutine.
// It runs until the watcher is closed, then closes the Events channel.
func (w *Watcher) Start() {
	defer w.debouncer.Close()
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// handleEvent converts a single fsnotify event into a debounced event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// A new directory may already contain files (e.g. a checkout or a move),
	// so watch the whole subtree and emit create events for its files.
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if w.pruneChecker.ShouldPrune(path) {
				return
			}
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			w.addExistingFiles(path)
			return
		}
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	case event.Has(fsnotify.Remove):
		op = OpRemove
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	w.debouncer.Add(path, op)
}

// addExistingFiles emits create events for files already present in a new
// directory. Unreadable entries are logged and skipped.
func (w *Watcher) addExistingFiles(dir string) {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("failed to scan new directory", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && w.pruneChecker.ShouldPrune(path) {
				return filepath.SkipDir
			}
			return nil
		}
		w.debouncer.Add(path, OpCreate)
		return nil
	})
	if err != nil {
		w.logger.Warn("failed to scan new directory", "path", dir, "error", err)
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
