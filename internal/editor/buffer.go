// Package editor provides the line buffer behind the detail view. The
// session only loads text into it, flattens it back to lines and inspects the
// mode flag; the cursor and insertion mechanics exist for the TUI.
package editor

import "strings"

// Mode distinguishes text insertion from command-entry handling. Keystrokes
// are only intercepted as view transitions while the buffer is in ModeNormal.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
)

// Buffer is a plain line buffer with a cursor.
type Buffer struct {
	lines [][]rune
	row   int
	col   int
	mode  Mode
}

func New() *Buffer {
	return &Buffer{lines: [][]rune{{}}}
}

// Load replaces the buffer content with text and resets cursor and mode.
func (b *Buffer) Load(text string) {
	parts := strings.Split(text, "\n")
	b.lines = make([][]rune, len(parts))
	for i, p := range parts {
		b.lines[i] = []rune(p)
	}
	b.row, b.col = 0, 0
	b.mode = ModeNormal
}

// Lines flattens the buffer back to plain lines.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	for i, l := range b.lines {
		out[i] = string(l)
	}
	return out
}

// Text joins the buffer into a single string.
func (b *Buffer) Text() string {
	return strings.Join(b.Lines(), "\n")
}

func (b *Buffer) Mode() Mode        { return b.mode }
func (b *Buffer) SetMode(m Mode)    { b.mode = m }
func (b *Buffer) Cursor() (int, int) { return b.row, b.col }
func (b *Buffer) LineCount() int    { return len(b.lines) }

// Line returns the i-th line for rendering, or "" out of range.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return string(b.lines[i])
}

// Move shifts the cursor by the given deltas, clamped to the buffer.
func (b *Buffer) Move(dRow, dCol int) {
	b.row += dRow
	if b.row < 0 {
		b.row = 0
	}
	if b.row >= len(b.lines) {
		b.row = len(b.lines) - 1
	}
	b.col += dCol
	if b.col < 0 {
		b.col = 0
	}
	if b.col > len(b.lines[b.row]) {
		b.col = len(b.lines[b.row])
	}
}

// InsertRune inserts r at the cursor and advances it.
func (b *Buffer) InsertRune(r rune) {
	line := b.lines[b.row]
	if b.col > len(line) {
		b.col = len(line)
	}
	line = append(line[:b.col], append([]rune{r}, line[b.col:]...)...)
	b.lines[b.row] = line
	b.col++
}

// InsertNewline splits the current line at the cursor.
func (b *Buffer) InsertNewline() {
	line := b.lines[b.row]
	if b.col > len(line) {
		b.col = len(line)
	}
	rest := append([]rune(nil), line[b.col:]...)
	b.lines[b.row] = line[:b.col]

	tail := append([][]rune{rest}, b.lines[b.row+1:]...)
	b.lines = append(b.lines[:b.row+1], tail...)
	b.row++
	b.col = 0
}

// DeleteBack removes the rune before the cursor, joining lines at column 0.
func (b *Buffer) DeleteBack() {
	if b.col > 0 {
		line := b.lines[b.row]
		b.lines[b.row] = append(line[:b.col-1], line[b.col:]...)
		b.col--
		return
	}
	if b.row == 0 {
		return
	}
	prev := b.lines[b.row-1]
	b.col = len(prev)
	b.lines[b.row-1] = append(prev, b.lines[b.row]...)
	b.lines = append(b.lines[:b.row], b.lines[b.row+1:]...)
	b.row--
}
