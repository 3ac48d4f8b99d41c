package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lexandro/copyrighter/audit"
	"github.com/lexandro/copyrighter/header"
	"github.com/lexandro/copyrighter/ignore"
	"github.com/lexandro/copyrighter/language"
	"github.com/lexandro/copyrighter/project"
)

// errOutOfDate is returned by check mode when some file needs a new header.
var errOutOfDate = errors.New("license headers are out of date")

// sweepConfig holds everything a sweep needs. None of it changes during a run.
type sweepConfig struct {
	RootDir    string
	License    string
	Categories []project.Category
	Matcher    *ignore.Matcher
	// Progress receives the "Copywriting:" and "Inspecting" lines.
	Progress io.Writer
	// Audit records replaced headers when non-nil.
	Audit *audit.Index
	// DryRun reports out-of-date files instead of rewriting them.
	DryRun bool
	// Serial, when set, is held for a whole sweep or watch batch. MCP tool
	// calls and the watcher share it; files are rewritten by one holder at a time.
	Serial *sync.Mutex
	Logger *slog.Logger
}

// SweepResult holds the outcome of a single sweep.
type SweepResult struct {
	Projects  int      // project roots discovered
	Files     int      // candidate files inspected
	Rewritten int      // files written
	Replaced  int      // files whose existing header differed from the license
	OutOfDate []string // dry run only: files that would change, relative to the root
	Duration  time.Duration
}

// headerCache renders the license once per language.
type headerCache struct {
	license  string
	rendered map[language.Language]renderedHeader
}

type renderedHeader struct {
	style header.Style
	text  string
}

func newHeaderCache(license string) *headerCache {
	return &headerCache{
		license:  license,
		rendered: make(map[language.Language]renderedHeader),
	}
}

func (c *headerCache) lookup(lang language.Language) (header.Style, string, error) {
	if h, ok := c.rendered[lang]; ok {
		return h.style, h.text, nil
	}
	style, err := language.Style(lang)
	if err != nil {
		return header.Style{}, "", err
	}
	h := renderedHeader{style: style, text: header.Render(c.license, style)}
	c.rendered[lang] = h
	return h.style, h.text, nil
}

// performSweep finds every project under the root and rewrites the header of
// each selected file, one file at a time. The first error stops the sweep;
// files rewritten before it keep their new header.
func performSweep(cfg sweepConfig) (result SweepResult, err error) {
	if cfg.Serial != nil {
		cfg.Serial.Lock()
		defer cfg.Serial.Unlock()
	}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	roots, err := project.Discover(cfg.RootDir, cfg.Matcher)
	if err != nil {
		return result, err
	}

	headers := newHeaderCache(cfg.License)
	// Nested projects can select the same file twice.
	seen := make(map[string]bool)

	for _, dir := range roots {
		result.Projects++
		fmt.Fprintf(cfg.Progress, "Copywriting: %s\n", relativeTo(cfg.RootDir, dir))

		for _, category := range cfg.Categories {
			fmt.Fprintf(cfg.Progress, "Inspecting %s\n", category.Glob)

			files, err := project.Select(dir, category.Glob)
			if err != nil {
				return result, err
			}
			for _, path := range files {
				if seen[path] {
					continue
				}
				seen[path] = true
				result.Files++

				if err := sweepFile(cfg, headers, path, category.Language, &result); err != nil {
					return result, err
				}
			}
		}
	}

	cfg.Logger.Debug("sweep complete",
		"projects", result.Projects,
		"files", result.Files,
		"rewritten", result.Rewritten,
		"replaced", result.Replaced,
	)
	return result, nil
}

// sweepFile rewrites (or, in a dry run, checks) one file.
func sweepFile(cfg sweepConfig, headers *headerCache, path string, lang language.Language, result *SweepResult) error {
	style, rendered, err := headers.lookup(lang)
	if err != nil {
		return fmt.Errorf("rewriting %s: %w", path, err)
	}
	relPath := relativeTo(cfg.RootDir, path)

	if cfg.DryRun {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if header.Splice(content, style, rendered).Changed {
			result.OutOfDate = append(result.OutOfDate, relPath)
			cfg.Logger.Debug("header out of date", "path", relPath)
		}
		return nil
	}

	rewrite, err := header.Rewrite(path, style, rendered, header.Options{})
	if err != nil {
		return err
	}
	result.Rewritten++
	cfg.Logger.Debug("rewrote file", "path", relPath, "language", lang.String(), "changed", rewrite.Changed)

	if replacedOther(rewrite.Replaced, rendered) {
		result.Replaced++
		recordReplaced(cfg, relPath, lang, rewrite.Replaced)
	}
	return nil
}

// replacedOther reports whether a removed header was something other than
// the license header itself.
func replacedOther(replaced []byte, rendered string) bool {
	return len(replaced) > 0 && !bytes.Equal(replaced, []byte(rendered))
}

// recordReplaced stores a removed header in the audit index, if there is one.
func recordReplaced(cfg sweepConfig, relPath string, lang language.Language, replaced []byte) {
	if cfg.Audit == nil {
		return
	}
	entry := audit.Entry{Path: relPath, Language: lang.String(), Header: string(replaced)}
	if err := cfg.Audit.Record(entry); err != nil {
		cfg.Logger.Warn("failed to record replaced header", "path", relPath, "error", err)
	}
}

// rewriteFiles rewrites explicitly named files, detecting each language from
// its extension.
func rewriteFiles(paths []string, license string, logger *slog.Logger) (int, error) {
	headers := newHeaderCache(license)
	rewritten := 0
	for _, path := range paths {
		lang := language.Detect(path)
		style, rendered, err := headers.lookup(lang)
		if err != nil {
			return rewritten, fmt.Errorf("rewriting %s: %w", path, err)
		}
		if _, err := header.Rewrite(path, style, rendered, header.Options{}); err != nil {
			return rewritten, err
		}
		rewritten++
		logger.Debug("rewrote file", "path", path, "language", lang.String())
	}
	return rewritten, nil
}

// relativeTo returns path relative to root in forward-slash form, or path
// unchanged if it is not below root.
func relativeTo(root, path string) string {
	relPath, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(relPath)
}
