package tools

import (
	"strings"
	"testing"

	"github.com/lexandro/copyrighter/audit"
	"github.com/lexandro/copyrighter/header"
)

// --- FormatSweepStats ---

func Test_FormatSweepStats_AllCurrent(t *testing.T) {
	got := FormatSweepStats(SweepStats{Projects: 1, Files: 4, DryRun: true})
	if !strings.Contains(got, "Checked 4 files in 1 projects") || !strings.Contains(got, "All headers are up to date.") {
		t.Errorf("unexpected output: %q", got)
	}
}

func Test_FormatSweepStats_Rewrite(t *testing.T) {
	got := FormatSweepStats(SweepStats{Projects: 2, Rewritten: 7, Replaced: 1})
	want := "Rewrote 7 files in 2 projects in 0s\nExisting headers replaced: 1\n"
	if got != want {
		t.Errorf("FormatSweepStats() = %q, want %q", got, want)
	}
}

// --- FormatCheckResult ---

func Test_FormatCheckResult_IndentsReplacedHeader(t *testing.T) {
	result := header.Result{Replaced: []byte("/*\r\n * old\r\n */\r\n"), Changed: true}
	got := FormatCheckResult("A.java", "java", result)
	want := "── A.java (java) ──\nHeader is out of date.\nWould replace:\n  /*\n   * old\n   */\n"
	if got != want {
		t.Errorf("FormatCheckResult() = %q, want %q", got, want)
	}
}

// --- FormatReplaced ---

func Test_FormatReplaced(t *testing.T) {
	entries := []audit.Entry{
		{Path: "a.clj", Language: "clojure", Header: ";; one\n"},
		{Path: "b.clj", Language: "clojure", Header: ";; two\n"},
	}
	got := FormatReplaced(entries)
	want := "Found 2 replaced headers:\n\n── a.clj (clojure) ──\n  ;; one\n\n── b.clj (clojure) ──\n  ;; two\n"
	if got != want {
		t.Errorf("FormatReplaced() = %q, want %q", got, want)
	}
}
