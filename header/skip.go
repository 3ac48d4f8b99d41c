package header

import (
	"bytes"
	"strings"
)

// Cursor is a forward-only read position over file content, one line at a time.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Peek returns the next line, including its terminator, without consuming it.
// ok is false at end of stream.
func (c *Cursor) Peek() (line []byte, ok bool) {
	if c.pos >= len(c.data) {
		return nil, false
	}
	rest := c.data[c.pos:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		return rest[:i+1], true
	}
	return rest, true
}

// Advance consumes the line returned by the last Peek.
func (c *Cursor) Advance() {
	if line, ok := c.Peek(); ok {
		c.pos += len(line)
	}
}

// Offset returns the byte offset of the next unread line.
func (c *Cursor) Offset() int { return c.pos }

// EOF reports whether every line has been consumed.
func (c *Cursor) EOF() bool { return c.pos >= len(c.data) }

// Rest returns the unread remainder, unmodified.
func (c *Cursor) Rest() []byte { return c.data[c.pos:] }

// Skip advances c past a leading header comment block of style s, together
// with the blank lines surrounding it. A comment that does not start the
// content (after blank lines) is left in place. Skip returns the header
// lines it consumed, without the surrounding blank lines.
func Skip(c *Cursor, s Style) []byte {
	skipBlankLines(c)
	start := c.Offset()
	switch s.Kind {
	case Simple:
		skipSimpleHeader(c, s)
	case Block:
		skipBlockHeader(c, s)
	}
	end := c.Offset()
	skipBlankLines(c)
	return c.data[start:end]
}

func skipBlankLines(c *Cursor) {
	for {
		line, ok := c.Peek()
		if !ok || !isBlank(line) {
			return
		}
		c.Advance()
	}
}

func skipSimpleHeader(c *Cursor, s Style) {
	prefix := strings.TrimSpace(s.LinePrefix)
	for {
		line, ok := c.Peek()
		if !ok || !strings.HasPrefix(trimmed(line), prefix) {
			return
		}
		c.Advance()
	}
}

func skipBlockHeader(c *Cursor, s Style) {
	start := strings.TrimSpace(s.BlockStart)
	end := strings.TrimSpace(s.BlockEnd)

	line, ok := c.Peek()
	if !ok || !strings.HasPrefix(trimmed(line), start) {
		return
	}
	c.Advance()
	// Opened and closed on the same line.
	if strings.HasSuffix(trimmed(line), end) {
		return
	}

	// An unterminated comment runs to end of stream.
	for {
		line, ok := c.Peek()
		if !ok {
			return
		}
		c.Advance()
		if strings.HasSuffix(trimmed(line), end) {
			return
		}
	}
}

func trimmed(line []byte) string {
	return strings.TrimSpace(string(line))
}

func isBlank(line []byte) bool {
	return len(bytes.TrimSpace(line)) == 0
}
