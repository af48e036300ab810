package core

import (
	"slices"
	"strings"
)

// Buffer stores composer text as lines of runes with a single global cursor.
// The cursor counts one virtual newline per line boundary, so a buffer of
// ["ab", "cd"] has offsets 0..5 and offset 2 is the end of the first line.
// All offset arithmetic in the repository goes through Locate and Offset.
type Buffer struct {
	lines  [][]rune
	cursor int
}

// NewBuffer returns an empty buffer with the cursor at 0.
func NewBuffer() *Buffer {
	return &Buffer{lines: [][]rune{nil}}
}

// TotalChars returns the rune count of all lines plus one per line boundary.
func (b *Buffer) TotalChars() int {
	total := len(b.lines) - 1
	for _, line := range b.lines {
		total += len(line)
	}
	return total
}

// Cursor returns the global cursor offset.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// LineCount returns the number of lines, always at least 1.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// IsSingleLine reports whether the buffer holds exactly one line.
func (b *Buffer) IsSingleLine() bool {
	return len(b.lines) == 1
}

// IsBlank reports whether the buffer has no visible content.
func (b *Buffer) IsBlank() bool {
	return strings.TrimSpace(b.Text()) == ""
}

// Locate maps a global offset to a line and column. An offset on a virtual
// newline resolves to the end of the line it terminates.
func (b *Buffer) Locate(pos int) (int, int) {
	if pos < 0 {
		pos = 0
	}
	for i, line := range b.lines {
		if pos <= len(line) {
			return i, pos
		}
		pos -= len(line) + 1
	}
	last := len(b.lines) - 1
	return last, len(b.lines[last])
}

// Offset maps a line and column back to a global offset, clamping both.
func (b *Buffer) Offset(line, col int) int {
	line = clampInt(line, 0, len(b.lines)-1)
	col = clampInt(col, 0, len(b.lines[line]))
	return b.LineStart(line) + col
}

// LineStart returns the global offset of the first column of line.
func (b *Buffer) LineStart(line int) int {
	line = clampInt(line, 0, len(b.lines)-1)
	start := 0
	for i := 0; i < line; i++ {
		start += len(b.lines[i]) + 1
	}
	return start
}

// LineEnd returns the global offset just past the last rune of line.
func (b *Buffer) LineEnd(line int) int {
	line = clampInt(line, 0, len(b.lines)-1)
	return b.LineStart(line) + len(b.lines[line])
}

// InsertRune inserts r at the cursor and advances it. A newline splits the line.
func (b *Buffer) InsertRune(r rune) {
	if r == '\n' {
		b.SplitLine()
		return
	}
	line, col := b.Locate(b.cursor)
	b.lines[line] = slices.Insert(b.lines[line], col, r)
	b.cursor++
}

// InsertString inserts every rune of s at the cursor.
func (b *Buffer) InsertString(s string) {
	for _, r := range strings.ReplaceAll(s, "\r\n", "\n") {
		b.InsertRune(r)
	}
}

// Backspace removes the rune before the cursor, joining lines at column 0.
func (b *Buffer) Backspace() {
	if b.cursor == 0 {
		return
	}
	line, col := b.Locate(b.cursor)
	if col == 0 {
		b.lines[line-1] = append(b.lines[line-1], b.lines[line]...)
		b.lines = slices.Delete(b.lines, line, line+1)
	} else {
		b.lines[line] = slices.Delete(b.lines[line], col-1, col)
	}
	b.cursor--
}

// DeleteForward removes the rune after the cursor, joining lines at a line end.
func (b *Buffer) DeleteForward() {
	if b.cursor >= b.TotalChars() {
		return
	}
	line, col := b.Locate(b.cursor)
	if col == len(b.lines[line]) {
		b.lines[line] = append(b.lines[line], b.lines[line+1]...)
		b.lines = slices.Delete(b.lines, line+1, line+2)
		return
	}
	b.lines[line] = slices.Delete(b.lines[line], col, col+1)
}

// SplitLine breaks the current line at the cursor; the cursor lands on the new line.
func (b *Buffer) SplitLine() {
	line, col := b.Locate(b.cursor)
	tail := append([]rune(nil), b.lines[line][col:]...)
	b.lines[line] = b.lines[line][:col:col]
	b.lines = slices.Insert(b.lines, line+1, tail)
	b.cursor++
}

// MoveLeft moves the cursor back one position.
func (b *Buffer) MoveLeft() {
	if b.cursor > 0 {
		b.cursor--
	}
}

// MoveRight moves the cursor forward one position.
func (b *Buffer) MoveRight() {
	if b.cursor < b.TotalChars() {
		b.cursor++
	}
}

// MoveUp moves to the previous line, keeping the column where it fits.
func (b *Buffer) MoveUp() {
	line, col := b.Locate(b.cursor)
	if line == 0 {
		return
	}
	b.cursor = b.Offset(line-1, col)
}

// MoveDown moves to the next line, keeping the column where it fits.
func (b *Buffer) MoveDown() {
	line, col := b.Locate(b.cursor)
	if line >= len(b.lines)-1 {
		return
	}
	b.cursor = b.Offset(line+1, col)
}

// MoveHome moves to the start of the current line.
func (b *Buffer) MoveHome() {
	line, _ := b.Locate(b.cursor)
	b.cursor = b.LineStart(line)
}

// MoveEnd moves to the end of the current line.
func (b *Buffer) MoveEnd() {
	line, _ := b.Locate(b.cursor)
	b.cursor = b.LineEnd(line)
}

// Text returns the lines joined by '\n'.
func (b *Buffer) Text() string {
	return strings.Join(b.Lines(), "\n")
}

// Lines returns a copy of the lines as strings.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	for i, line := range b.lines {
		out[i] = string(line)
	}
	return out
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.lines = [][]rune{nil}
	b.cursor = 0
}

// SetText replaces the content, splitting on '\n', and puts the cursor at the end.
func (b *Buffer) SetText(text string) {
	parts := strings.Split(text, "\n")
	b.lines = make([][]rune, len(parts))
	for i, part := range parts {
		b.lines[i] = []rune(part)
	}
	b.cursor = b.TotalChars()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
