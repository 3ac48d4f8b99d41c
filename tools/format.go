package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/lexandro/copyrighter/audit"
	"github.com/lexandro/copyrighter/header"
)

// FormatSweepStats formats a sweep summary as human-readable text.
func FormatSweepStats(stats SweepStats) string {
	var builder strings.Builder
	elapsed := stats.Elapsed.Round(time.Millisecond)

	if stats.DryRun {
		builder.WriteString(fmt.Sprintf("Checked %d files in %d projects in %s\n",
			stats.Files, stats.Projects, elapsed))
		if len(stats.OutOfDate) == 0 {
			builder.WriteString("All headers are up to date.\n")
			return builder.String()
		}
		builder.WriteString(fmt.Sprintf("%d files need a new header:\n", len(stats.OutOfDate)))
		for _, path := range stats.OutOfDate {
			builder.WriteString(fmt.Sprintf("  %s\n", path))
		}
		return builder.String()
	}

	builder.WriteString(fmt.Sprintf("Rewrote %d files in %d projects in %s\n",
		stats.Rewritten, stats.Projects, elapsed))
	builder.WriteString(fmt.Sprintf("Existing headers replaced: %d\n", stats.Replaced))
	return builder.String()
}

// FormatCheckResult describes whether one file carries the current header.
func FormatCheckResult(filePath string, lang string, result header.Result) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("── %s (%s) ──\n", filePath, lang))

	if !result.Changed {
		builder.WriteString("Header is up to date.\n")
		return builder.String()
	}

	builder.WriteString("Header is out of date.\n")
	if len(result.Replaced) == 0 {
		builder.WriteString("No existing header; the license would be prepended.\n")
		return builder.String()
	}
	builder.WriteString("Would replace:\n")
	writeIndented(&builder, string(result.Replaced))
	return builder.String()
}

// FormatReplaced formats replaced-header search results.
func FormatReplaced(entries []audit.Entry) string {
	if len(entries) == 0 {
		return "No replaced headers matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d replaced headers:\n\n", len(entries)))
	for i, entry := range entries {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("── %s (%s) ──\n", entry.Path, entry.Language))
		writeIndented(&builder, entry.Header)
	}
	return builder.String()
}

func writeIndented(builder *strings.Builder, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		builder.WriteString("  ")
		builder.WriteString(strings.TrimRight(line, "\r"))
		builder.WriteString("\n")
	}
}
