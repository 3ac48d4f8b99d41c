package ignore

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher decides which directories to prune while walking a project tree.
// It combines the fixed prune set, optional .gitignore rules and custom CLI patterns.
// Thread-safe: Reload() acquires a write lock, ShouldPrune() acquires a read lock.
type Matcher struct {
	mu             sync.RWMutex
	rootDir        string
	pruneDirs      map[string]bool
	useGitignore   bool
	gitIgnore      gitignore.GitIgnore
	customPatterns []string
}

// MatcherOptions configures the prune matcher.
type MatcherOptions struct {
	RootDir        string
	CustomPatterns []string
	// UseGitignore also prunes directories ignored by RootDir/.gitignore.
	UseGitignore bool
}

// NewMatcher creates a prune matcher for the given root.
func NewMatcher(options MatcherOptions) *Matcher {
	pruneDirs := make(map[string]bool, len(DefaultPruneDirs))
	for _, name := range DefaultPruneDirs {
		pruneDirs[name] = true
	}

	matcher := &Matcher{
		rootDir:        options.RootDir,
		pruneDirs:      pruneDirs,
		useGitignore:   options.UseGitignore,
		customPatterns: options.CustomPatterns,
	}
	if matcher.useGitignore {
		matcher.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".gitignore"), options.RootDir)
	}
	return matcher
}

// ShouldPrune returns true if dir must not be descended into.
func (m *Matcher) ShouldPrune(dir string) bool {
	// Fast check: the fixed prune set matches on basename alone (no lock needed)
	if m.pruneDirs[filepath.Base(dir)] {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	relativePath, err := filepath.Rel(m.rootDir, dir)
	if err != nil {
		relativePath = dir
	}
	relativePath = filepath.ToSlash(relativePath)

	// Relative() doesn't require the directory to exist on disk
	if m.gitIgnore != nil {
		match := m.gitIgnore.Relative(relativePath, true)
		if match != nil && match.Ignore() {
			return true
		}
	}

	return m.matchesCustomPatterns(relativePath)
}

// matchesCustomPatterns checks if the slash-separated relative path, or its
// basename, matches any -exclude pattern. Patterns may use ** segments.
func (m *Matcher) matchesCustomPatterns(relativePath string) bool {
	baseName := path.Base(relativePath)
	for _, pattern := range m.customPatterns {
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

// Reload re-reads the .gitignore file from disk.
// Used when the watcher detects a change to it.
func (m *Matcher) Reload() {
	if !m.useGitignore {
		return
	}
	newGitIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses io.Reader approach to ensure the file handle is properly closed on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
