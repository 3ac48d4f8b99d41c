// Package project finds project roots in a directory tree and selects the
// source files under each root that should carry a license header.
package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lexandro/copyrighter/language"
)

// ManifestName marks a directory as a project root.
const ManifestName = "pom.xml"

// Pruner decides whether a directory should be skipped during discovery.
type Pruner interface {
	ShouldPrune(path string) bool
}

// Category pairs a glob, relative to a project root, with the language of
// the files it selects.
type Category struct {
	Language language.Language
	Glob     string
}

// DefaultCategories lists the files rewritten in every project root.
var DefaultCategories = []Category{
	{Language: language.Java, Glob: "src/*/java/**/*.java"},
	{Language: language.Clojure, Glob: "src/*/clojure/**/*.clj"},
	{Language: language.Clojure, Glob: "src/test/resources/**/*.clj"},
	{Language: language.Clojure, Glob: "examples/**/*.clj"},
}

// Discover walks root and returns every directory that directly contains
// ManifestName, in walk order. Directories accepted by pruner are not
// descended into at any depth; root itself is always walked.
func Discover(root string, pruner Pruner) ([]string, error) {
	var roots []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && pruner.ShouldPrune(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == ManifestName {
			roots = append(roots, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering projects under %s: %w", root, err)
	}
	return roots, nil
}

// Select returns the regular files under dir matching a doublestar glob.
// Returned paths are dir joined with the match.
func Select(dir string, glob string) ([]string, error) {
	glob = strings.ReplaceAll(glob, "\\", "/")
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("invalid glob pattern: %s", glob)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), glob, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("matching %s in %s: %w", glob, dir, err)
	}

	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(match)))
	}
	return paths, nil
}

// Match finds the first root and category whose glob selects path.
// ok is false if no category applies.
func Match(roots []string, categories []Category, path string) (root string, category Category, ok bool) {
	for _, root := range roots {
		relPath, err := filepath.Rel(root, path)
		if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			continue
		}
		relPath = filepath.ToSlash(relPath)
		for _, category := range categories {
			matched, err := doublestar.Match(category.Glob, relPath)
			if err == nil && matched {
				return root, category, true
			}
		}
	}
	return "", Category{}, false
}
