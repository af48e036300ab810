package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const (
	promptFirst    = "> "
	promptContinue = "  "
)

// renderMessages turns viewport lines into exactly height display rows.
// Lines are sanitized and truncated, never wrapped, so one flattened line is
// one row and the viewport offset stays meaningful.
func renderMessages(lines []string, width, height int, theme tuiTheme) []string {
	if height <= 0 {
		return nil
	}
	rendered := make([]string, 0, height)
	for _, raw := range lines {
		if len(rendered) >= height {
			break
		}
		line := trimANSIToWidth(sanitizeOutputLine(raw), width)
		if isSystemLine(line) {
			line = theme.fg(theme.SystemFG, line)
		}
		rendered = append(rendered, line)
	}
	for len(rendered) < height {
		rendered = append(rendered, "")
	}
	return rendered
}

func isSystemLine(line string) bool {
	if !strings.HasPrefix(line, "[") {
		return false
	}
	idx := strings.Index(line, "] ")
	return idx > 0 && strings.HasPrefix(line[idx+2:], "System: ")
}

// renderInput wraps composer lines to width and returns at most maxRows rows
// plus the 1-based cursor position within them. cursorLine and cursorCol come
// from the buffer's Locate.
func renderInput(lines []string, cursorLine, cursorCol, width, maxRows int, theme tuiTheme) ([]string, int, int) {
	if width <= 0 {
		width = 80
	}
	if maxRows < 1 {
		maxRows = 1
	}
	prefixWidth := runewidth.StringWidth(promptFirst)
	avail := width - prefixWidth
	if avail < 1 {
		avail = 1
	}

	type row struct {
		first bool
		text  []rune
	}
	var rows []row
	curRow, curX := 0, 0
	for i, line := range lines {
		runes := []rune(sanitizeInputLine(line))
		rows = append(rows, row{first: i == 0})
		used := 0
		for j, r := range runes {
			rw := runewidth.RuneWidth(r)
			if used+rw > avail && used > 0 {
				rows = append(rows, row{})
				used = 0
			}
			if i == cursorLine && j == cursorCol {
				curRow, curX = len(rows)-1, used
			}
			rows[len(rows)-1].text = append(rows[len(rows)-1].text, r)
			used += rw
		}
		if i == cursorLine && cursorCol >= len(runes) {
			if used >= avail {
				rows = append(rows, row{})
				used = 0
			}
			curRow, curX = len(rows)-1, used
		}
	}

	top := 0
	if len(rows) > maxRows {
		top = curRow - maxRows + 1
		if top < 0 {
			top = 0
		}
		if top > len(rows)-maxRows {
			top = len(rows) - maxRows
		}
	}
	end := top + maxRows
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]string, 0, end-top)
	for _, r := range rows[top:end] {
		prefix := promptContinue
		if r.first {
			prefix = ansiPrompt(theme)
		}
		out = append(out, prefix+string(r.text))
	}
	col := prefixWidth + curX + 1
	if col > width {
		col = width
	}
	return out, curRow - top + 1, col
}

func ansiPrompt(theme tuiTheme) string {
	if theme.Plain {
		return promptFirst
	}
	return ansiBold + ansiFgRGB(theme.PromptFG) + ">" + ansiReset + " "
}

// padToWidth fills text with spaces up to width visible cells.
func padToWidth(text string, width int) string {
	text = trimANSIToWidth(text, width)
	if pad := width - visibleWidth(text); pad > 0 {
		return text + strings.Repeat(" ", pad)
	}
	return text
}

// sanitizeInputLine keeps rune positions aligned with the buffer: control
// characters are shown as '?' instead of being dropped.
func sanitizeInputLine(text string) string {
	if !strings.ContainsFunc(text, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return text
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '?'
		}
		return r
	}, text)
}

func sanitizeOutputLine(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(text); {
		ch := text[i]
		if ch == 0x1b {
			i = skipEscape(text, i+1)
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		if r == '\r' {
			i += size
			continue
		}
		if r == '\t' {
			b.WriteString("    ")
			i += size
			continue
		}
		if r < 0x20 || r == 0x7f {
			i += size
			continue
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

func skipEscape(text string, i int) int {
	if i >= len(text) {
		return i
	}
	switch text[i] {
	case '[':
		return skipCSI(text, i+1)
	case ']':
		return skipOSC(text, i+1)
	default:
		return i + 1
	}
}

func skipCSI(text string, i int) int {
	for i < len(text) {
		b := text[i]
		if b >= 0x40 && b <= 0x7e {
			return i + 1
		}
		i++
	}
	return i
}

func skipOSC(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case 0x07:
			return i + 1
		case 0x1b:
			if i+1 < len(text) && text[i+1] == '\\' {
				return i + 2
			}
		}
		i++
	}
	return i
}

func visibleWidth(text string) int {
	width := 0
	for i := 0; i < len(text); {
		if text[i] == 0x1b {
			i = skipEscape(text, i+1)
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		i += size
		width += runewidth.RuneWidth(r)
	}
	return width
}

func trimANSIToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	visible := 0
	for i := 0; i < len(text); {
		if text[i] == 0x1b {
			start := i
			i = skipEscape(text, i+1)
			b.WriteString(text[start:i])
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		rw := runewidth.RuneWidth(r)
		if visible+rw > width {
			break
		}
		b.WriteRune(r)
		i += size
		visible += rw
	}
	return b.String()
}
