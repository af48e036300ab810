package tui

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"pkt.systems/tchat/core"
)

// readKeys decodes terminal input into keys until r fails or ctx ends.
func readKeys(ctx context.Context, r io.Reader, out chan<- core.Key) {
	defer close(out)
	br := bufio.NewReader(r)
	emit := func(k core.Key) bool {
		select {
		case out <- k:
			return true
		case <-ctx.Done():
			return false
		}
	}
	lastWasCR := false
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		if lastWasCR {
			lastWasCR = false
			if b == '\n' {
				continue
			}
		}
		var k core.Key
		switch b {
		case 0x1b:
			if br.Buffered() == 0 {
				k = core.Key{Kind: core.KeyEscape}
				break
			}
			var ok bool
			if k, ok = readEscape(br); !ok {
				continue
			}
		case '\r':
			k = core.Key{Kind: core.KeyEnter}
			lastWasCR = true
		case '\n':
			k = core.Key{Kind: core.KeyEnter}
		case 0x7f, 0x08:
			k = core.Key{Kind: core.KeyBackspace}
		case 0x03:
			k = core.Key{Kind: core.KeyCtrlC}
		case 0x09:
			k = core.Key{Kind: core.KeyTab}
		case 0x01:
			k = core.Key{Kind: core.KeyHome}
		case 0x05:
			k = core.Key{Kind: core.KeyEnd}
		case 0x04:
			k = core.Key{Kind: core.KeyDelete}
		default:
			if b < 0x20 {
				continue
			}
			if b < utf8.RuneSelf {
				k = core.Key{Kind: core.KeyRune, Rune: rune(b)}
				break
			}
			_ = br.UnreadByte()
			rn, _, err := br.ReadRune()
			if err != nil {
				return
			}
			if rn == utf8.RuneError {
				continue
			}
			k = core.Key{Kind: core.KeyRune, Rune: rn}
		}
		if !emit(k) {
			return
		}
	}
}

func readEscape(br *bufio.Reader) (core.Key, bool) {
	b, err := br.ReadByte()
	if err != nil {
		return core.Key{}, false
	}
	switch b {
	case '[':
		return readCSI(br)
	case 'O':
		return readSS3(br)
	case 0x1b:
		return core.Key{Kind: core.KeyEscape}, true
	default:
		return core.Key{}, false
	}
}

func readCSI(br *bufio.Reader) (core.Key, bool) {
	seq := []byte{}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return core.Key{}, false
		}
		seq = append(seq, b)
		if b == '~' || unicode.IsLetter(rune(b)) {
			break
		}
		if len(seq) > 8 {
			return core.Key{}, false
		}
	}
	switch string(seq) {
	case "A":
		return core.Key{Kind: core.KeyUp}, true
	case "B":
		return core.Key{Kind: core.KeyDown}, true
	case "C":
		return core.Key{Kind: core.KeyRight}, true
	case "D":
		return core.Key{Kind: core.KeyLeft}, true
	case "H", "1~", "7~":
		return core.Key{Kind: core.KeyHome}, true
	case "F", "4~", "8~":
		return core.Key{Kind: core.KeyEnd}, true
	case "5~":
		return core.Key{Kind: core.KeyPageUp}, true
	case "6~":
		return core.Key{Kind: core.KeyPageDown}, true
	case "3~":
		return core.Key{Kind: core.KeyDelete}, true
	case "200~":
		return readPaste(br)
	case "13;2u", "27;2;13~":
		// Shift+Enter from terminals that report modified keys.
		return core.Key{Kind: core.KeyEnter}, true
	}
	return core.Key{}, false
}

func readSS3(br *bufio.Reader) (core.Key, bool) {
	b, err := br.ReadByte()
	if err != nil {
		return core.Key{}, false
	}
	switch b {
	case 'A':
		return core.Key{Kind: core.KeyUp}, true
	case 'B':
		return core.Key{Kind: core.KeyDown}, true
	case 'C':
		return core.Key{Kind: core.KeyRight}, true
	case 'D':
		return core.Key{Kind: core.KeyLeft}, true
	case 'H':
		return core.Key{Kind: core.KeyHome}, true
	case 'F':
		return core.Key{Kind: core.KeyEnd}, true
	}
	return core.Key{}, false
}

const maxPasteBytes = 64 << 10

var pasteEnd = []byte("\x1b[201~")

// readPaste consumes a bracketed paste up to its end marker. Bytes past
// maxPasteBytes are discarded.
func readPaste(br *bufio.Reader) (core.Key, bool) {
	var buf []byte
	var tail []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return core.Key{}, false
		}
		tail = append(tail, b)
		if len(tail) > len(pasteEnd) {
			tail = tail[1:]
		}
		if bytes.Equal(tail, pasteEnd) {
			break
		}
		if len(buf) < maxPasteBytes+len(pasteEnd) {
			buf = append(buf, b)
		}
	}
	if len(buf) >= len(pasteEnd)-1 {
		buf = buf[:len(buf)-(len(pasteEnd)-1)]
	}
	if len(buf) > maxPasteBytes {
		buf = buf[:maxPasteBytes]
	}
	text := cleanPaste(string(buf))
	if text == "" {
		return core.Key{}, false
	}
	return core.Key{Kind: core.KeyPaste, Text: text}, true
}

// cleanPaste normalizes line endings to '\n' and drops other control runes.
func cleanPaste(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if r == '\t' {
			return ' '
		}
		if r == utf8.RuneError || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
