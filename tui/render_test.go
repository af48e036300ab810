package tui

import (
	"strings"
	"testing"
)

var plain = tuiTheme{Plain: true}

func TestRenderMessagesPadsAndTruncates(t *testing.T) {
	rows := renderMessages([]string{"hello world", "x\x1b[31mred\x1b[0m\tz"}, 8, 4, plain)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0] != "hello wo" {
		t.Fatalf("expected truncated row, got %q", rows[0])
	}
	if rows[1] != "xred    " {
		t.Fatalf("expected sanitized row, got %q", rows[1])
	}
	if rows[2] != "" || rows[3] != "" {
		t.Fatalf("expected blank padding rows, got %q", rows[2:])
	}
}

func TestRenderMessagesStylesSystemLines(t *testing.T) {
	theme := themeForName("outrun", true)
	rows := renderMessages([]string{"[12:00:00] System: bob joined the chat", "[12:00:01] bob: hi"}, 80, 2, theme)
	if !strings.HasPrefix(rows[0], "\x1b[38;2;") {
		t.Fatalf("expected system line colored, got %q", rows[0])
	}
	if rows[1] != "[12:00:01] bob: hi" {
		t.Fatalf("expected chat line unstyled, got %q", rows[1])
	}
}

func TestMonoThemeIsPlain(t *testing.T) {
	theme := themeForName("mono", true)
	if !theme.Plain {
		t.Fatalf("expected mono theme to disable color")
	}
	if got := theme.bar("title"); got != "title" {
		t.Fatalf("expected unstyled title, got %q", got)
	}
	if themeForName("gruvbox", true).Plain {
		t.Fatalf("expected gruvbox colored on a color terminal")
	}
}

func TestRenderInputCursorPositions(t *testing.T) {
	cases := []struct {
		name    string
		lines   []string
		line    int
		col     int
		width   int
		rows    []string
		wantRow int
		wantCol int
	}{
		{"empty", []string{""}, 0, 0, 20, []string{"> "}, 1, 3},
		{"mid-line", []string{"hello"}, 0, 2, 20, []string{"> hello"}, 1, 5},
		{"second-line", []string{"ab", "cd"}, 1, 0, 20, []string{"> ab", "  cd"}, 2, 3},
		{"wrapped", []string{"abcdef"}, 0, 5, 6, []string{"> abcd", "  ef"}, 2, 4},
		{"end-of-full-row", []string{"abcd"}, 0, 4, 6, []string{"> abcd", "  "}, 2, 3},
		{"wide-runes", []string{"日本"}, 0, 1, 20, []string{"> 日本"}, 1, 5},
	}
	for _, tc := range cases {
		rows, row, col := renderInput(tc.lines, tc.line, tc.col, tc.width, 10, plain)
		if strings.Join(rows, "|") != strings.Join(tc.rows, "|") {
			t.Fatalf("%s: expected rows %q, got %q", tc.name, tc.rows, rows)
		}
		if row != tc.wantRow || col != tc.wantCol {
			t.Fatalf("%s: expected cursor (%d,%d), got (%d,%d)", tc.name, tc.wantRow, tc.wantCol, row, col)
		}
	}
}

func TestRenderInputKeepsCursorVisible(t *testing.T) {
	lines := []string{"1", "2", "3", "4", "5"}
	rows, row, _ := renderInput(lines, 4, 1, 20, 2, plain)
	if len(rows) != 2 || rows[0] != "  4" || rows[1] != "  5" {
		t.Fatalf("expected last two rows, got %q", rows)
	}
	if row != 2 {
		t.Fatalf("expected cursor on row 2, got %d", row)
	}
	rows, row, _ = renderInput(lines, 0, 0, 20, 2, plain)
	if rows[0] != "> 1" || row != 1 {
		t.Fatalf("expected first rows with cursor on row 1, got %q row %d", rows, row)
	}
}

func TestVisibleWidthAndTrim(t *testing.T) {
	if w := visibleWidth("\x1b[1mab\x1b[0m日"); w != 4 {
		t.Fatalf("expected width 4, got %d", w)
	}
	if got := trimANSIToWidth("ab日本", 3); got != "ab" {
		t.Fatalf("expected wide rune dropped, got %q", got)
	}
	if got := padToWidth("ab", 4); got != "ab  " {
		t.Fatalf("expected padded value, got %q", got)
	}
}

func TestIsErrorStatus(t *testing.T) {
	if !isErrorStatus("Connection failed: refused") || !isErrorStatus("Receive error: eof") || !isErrorStatus("Send error: full") {
		t.Fatalf("expected error statuses detected")
	}
	if isErrorStatus("Connected to localhost:9001") {
		t.Fatalf("expected connected status not to be an error")
	}
}

func TestScreenSkipsIdenticalFrames(t *testing.T) {
	var out strings.Builder
	s := newScreen(&out)
	if err := s.Render([]string{"a", "b"}, 2, 1); err != nil {
		t.Fatalf("render: %v", err)
	}
	first := out.Len()
	if !strings.Contains(out.String(), "a\r\nb") || !strings.Contains(out.String(), "\x1b[2;1H") {
		t.Fatalf("unexpected frame: %q", out.String())
	}
	_ = s.Render([]string{"a", "b"}, 2, 1)
	if out.Len() != first {
		t.Fatalf("expected identical frame skipped")
	}
	s.Invalidate()
	_ = s.Render([]string{"a", "b"}, 2, 1)
	if out.Len() != 2*first {
		t.Fatalf("expected repaint after invalidate")
	}
}
