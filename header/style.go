// Package header renders license header comments and replaces existing
// header comment blocks at the top of source files.
package header

import "strings"

// Kind distinguishes the two comment style families.
type Kind int

const (
	// Simple styles comment every line with a line prefix (e.g. ";;").
	Simple Kind = iota
	// Block styles wrap the header between start and end delimiters.
	Block
)

// Style describes how a language writes comments.
// BlockStart and BlockEnd are only meaningful for Block styles.
type Style struct {
	Kind       Kind
	LinePrefix string
	BlockStart string
	BlockEnd   string
}

// SimpleStyle returns a line-comment style using prefix on every line.
func SimpleStyle(prefix string) Style {
	return Style{Kind: Simple, LinePrefix: prefix}
}

// BlockStyle returns a block-comment style. Interior lines carry prefix.
func BlockStyle(prefix, start, end string) Style {
	return Style{Kind: Block, LinePrefix: prefix, BlockStart: start, BlockEnd: end}
}

// Render wraps license in comments of the given style. Each emitted line is
// newline-terminated. Trailing empty lines of license are dropped.
func Render(license string, s Style) string {
	lines := strings.Split(license, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var builder strings.Builder
	if s.Kind == Block {
		builder.WriteString(s.BlockStart)
		builder.WriteString("\n")
	}
	for _, line := range lines {
		builder.WriteString(s.LinePrefix)
		builder.WriteString(" ")
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	if s.Kind == Block {
		builder.WriteString(s.BlockEnd)
		builder.WriteString("\n")
	}
	return builder.String()
}
