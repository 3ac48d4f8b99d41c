package watcher

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type basenamePruner map[string]bool

func (p basenamePruner) ShouldPrune(path string) bool { return p[filepath.Base(path)] }

// waitForPath drains batches until one mentions path or the deadline passes.
func waitForPath(t *testing.T, events <-chan []DebouncedEvent, path string) DebouncedEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case batch, ok := <-events:
			if !ok {
				t.Fatalf("events closed before %s was reported", path)
			}
			for _, event := range batch {
				if event.Path == path {
					return event
				}
			}
		case <-deadline:
			t.Fatalf("timeout waiting for event on %s", path)
		}
	}
}

func Test_Watcher_ReportsNewFileInNewDirectory(t *testing.T) {
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w, err := NewWatcher(root, basenamePruner{"target": true}, logger)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()
	go w.Start()

	// Written before the directory event is handled, so it is picked up by
	// the walk of the new directory or by the directory's own watch.
	dir := filepath.Join(root, "src", "main", "java")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "A.java")
	if err := os.WriteFile(path, []byte("class A {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	event := waitForPath(t, w.Events(), path)
	if event.Op != OpCreate && event.Op != OpWrite {
		t.Errorf("unexpected op %s", event.Op)
	}
}

func Test_Watcher_CloseEndsEvents(t *testing.T) {
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w, err := NewWatcher(root, basenamePruner{}, logger)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	done := make(chan struct{})
	go func() {
		w.Start()
		close(done)
	}()

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Close")
	}
	if _, ok := <-w.Events(); ok {
		t.Error("expected Events to be closed")
	}
}

func Test_Watcher_AddExistingFilesLogsScanFailure(t *testing.T) {
	var logs bytes.Buffer
	w := &Watcher{
		debouncer:    NewDebouncer(10 * time.Millisecond),
		pruneChecker: basenamePruner{},
		logger:       slog.New(slog.NewTextHandler(&logs, nil)),
	}
	defer w.debouncer.Close()

	// The directory vanished between its create event and the scan.
	missing := filepath.Join(t.TempDir(), "gone")
	w.addExistingFiles(missing)

	if !strings.Contains(logs.String(), "failed to scan new directory") || !strings.Contains(logs.String(), "gone") {
		t.Errorf("expected the scan failure to be logged, got %q", logs.String())
	}
}

func Test_Watcher_AddExistingFilesEmitsCreates(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "target"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.clj", filepath.Join("target", "skipped.clj")} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("(ns a)\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	w := &Watcher{
		debouncer:    NewDebouncer(10 * time.Millisecond),
		pruneChecker: basenamePruner{"target": true},
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	defer w.debouncer.Close()

	w.addExistingFiles(dir)

	select {
	case batch := <-w.Events():
		if len(batch) != 1 || batch[0].Path != filepath.Join(dir, "a.clj") || batch[0].Op != OpCreate {
			t.Errorf("unexpected batch: %v", batch)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for batch")
	}
}
