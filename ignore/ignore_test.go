package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_Matcher_DefaultPruneDirs(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	tests := []struct {
		dir    string
		pruned bool
	}{
		{"target", true},
		{"tmp", true},
		{".git", true},
		{filepath.Join("lang-module", "target"), true},
		{filepath.Join("a", "b", "c", "tmp"), true},
		{"src", false},
		{"lang-module", false},
		{"targets", false},
	}

	for _, tt := range tests {
		got := matcher.ShouldPrune(filepath.Join(tmpDir, tt.dir))
		if got != tt.pruned {
			t.Errorf("ShouldPrune(%s) = %v, want %v", tt.dir, got, tt.pruned)
		}
	}
}

func Test_Matcher_GitignoreOffByDefault(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("generated/\n"), 0644)

	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})
	if matcher.ShouldPrune(filepath.Join(tmpDir, "generated")) {
		t.Error("expected .gitignore to be ignored unless enabled")
	}
}

func Test_Matcher_GitignoreIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("generated/\n"), 0644)

	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir, UseGitignore: true})

	if !matcher.ShouldPrune(filepath.Join(tmpDir, "generated")) {
		t.Error("expected .gitignore pattern to prune generated/")
	}
	if matcher.ShouldPrune(filepath.Join(tmpDir, "src")) {
		t.Error("expected src to NOT be pruned")
	}
}

func Test_Matcher_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir, UseGitignore: true})

	dir := filepath.Join(tmpDir, "scratch")
	if matcher.ShouldPrune(dir) {
		t.Fatal("expected scratch to be walked before .gitignore exists")
	}

	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("scratch/\n"), 0644)
	matcher.Reload()

	if !matcher.ShouldPrune(dir) {
		t.Error("expected scratch to be pruned after reload")
	}
}

func Test_Matcher_CustomPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{
		RootDir:        tmpDir,
		CustomPatterns: []string{"vendor*", "docs/legacy/", "**/generated"},
	})

	if !matcher.ShouldPrune(filepath.Join(tmpDir, "modules", "vendored")) {
		t.Error("expected basename pattern to prune vendored")
	}
	if !matcher.ShouldPrune(filepath.Join(tmpDir, "docs", "legacy")) {
		t.Error("expected relative path pattern to prune docs/legacy")
	}
	if !matcher.ShouldPrune(filepath.Join(tmpDir, "a", "b", "generated")) {
		t.Error("expected ** pattern to prune a/b/generated")
	}
	if matcher.ShouldPrune(filepath.Join(tmpDir, "docs")) {
		t.Error("expected docs to NOT be pruned")
	}
}
