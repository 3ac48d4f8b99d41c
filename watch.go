package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lexandro/copyrighter/header"
	"github.com/lexandro/copyrighter/project"
	"github.com/lexandro/copyrighter/watcher"
)

// runWatch keeps headers current as files are created or edited, until ctx
// is cancelled. Batches are handled on the calling goroutine, one file at a time.
func runWatch(ctx context.Context, cfg sweepConfig) error {
	fileWatcher, err := watcher.NewWatcher(cfg.RootDir, cfg.Matcher, cfg.Logger)
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer fileWatcher.Close()
	go fileWatcher.Start()

	roots, err := project.Discover(cfg.RootDir, cfg.Matcher)
	if err != nil {
		return err
	}
	headers := newHeaderCache(cfg.License)

	cfg.Logger.Info("watching for changes", "root", cfg.RootDir, "projects", len(roots))
	for {
		select {
		case <-ctx.Done():
			cfg.Logger.Info("watch stopped")
			return nil
		case events, ok := <-fileWatcher.Events():
			if !ok {
				return nil
			}
			roots = handleWatchEvents(events, roots, cfg, headers)
		}
	}
}

// handleWatchEvents applies headers to the changed files of one batch and
// returns the (possibly rediscovered) project roots. Failures are logged and
// skipped so a long-running watch survives a locked or vanished file.
func handleWatchEvents(events []watcher.DebouncedEvent, roots []string, cfg sweepConfig, headers *headerCache) []string {
	if cfg.Serial != nil {
		cfg.Serial.Lock()
		defer cfg.Serial.Unlock()
	}

	// Project layout changes first, so files of a new module in the same
	// batch are matched against it.
	rediscover := false
	for _, event := range events {
		switch filepath.Base(event.Path) {
		case ".gitignore":
			cfg.Matcher.Reload()
			cfg.Logger.Info("reloaded ignore rules", "trigger", relativeTo(cfg.RootDir, event.Path))
			rediscover = true
		case project.ManifestName:
			rediscover = true
		}
	}
	if rediscover {
		newRoots, err := project.Discover(cfg.RootDir, cfg.Matcher)
		if err != nil {
			cfg.Logger.Warn("failed to rediscover projects", "error", err)
		} else {
			cfg.Logger.Info("rediscovered projects", "projects", len(newRoots))
			roots = newRoots
		}
	}

	for _, event := range events {
		relPath := relativeTo(cfg.RootDir, event.Path)

		switch event.Op {
		case watcher.OpRemove, watcher.OpRename:
			if cfg.Audit != nil {
				if err := cfg.Audit.Remove(relPath); err != nil {
					cfg.Logger.Warn("failed to drop replaced header", "path", relPath, "error", err)
				}
			}
			continue
		}

		info, err := os.Stat(event.Path)
		if err != nil || info.IsDir() {
			continue
		}
		_, category, ok := project.Match(roots, cfg.Categories, event.Path)
		if !ok {
			continue
		}

		style, rendered, err := headers.lookup(category.Language)
		if err != nil {
			cfg.Logger.Warn("no comment style", "path", relPath, "error", err)
			continue
		}
		// Our own writes come back as events; SkipUnchanged ends the loop.
		result, err := header.Rewrite(event.Path, style, rendered, header.Options{SkipUnchanged: true})
		if err != nil {
			cfg.Logger.Warn("failed to apply header", "path", relPath, "error", err)
			continue
		}
		if !result.Changed {
			continue
		}
		cfg.Logger.Info("applied header", "path", relPath, "op", event.Op.String())
		if replacedOther(result.Replaced, rendered) {
			recordReplaced(cfg, relPath, category.Language, result.Replaced)
		}
	}
	return roots
}
