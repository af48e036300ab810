// Package format renders relay broadcast lines.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// TimeLayout is the clock format prefixed to every broadcast line.
const TimeLayout = "15:04:05"

// Timestamp formats t for a broadcast line.
func Timestamp(t time.Time) string {
	return t.Format(TimeLayout)
}

// ChatMessage formats a user message. Continuation lines are indented so
// they align with the text after "[ts] nick: ".
func ChatMessage(ts, nick, message string) string {
	lines := strings.Split(message, "\n")
	indent := strings.Repeat(" ", utf8.RuneCountInString(ts)+3+utf8.RuneCountInString(nick)+2)
	var b strings.Builder
	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(&b, "[%s] %s: %s", ts, nick, line)
			continue
		}
		b.WriteByte('\n')
		b.WriteString(indent)
		b.WriteString(line)
	}
	return b.String()
}

// System formats a relay notice.
func System(ts, text string) string {
	return fmt.Sprintf("[%s] System: %s", ts, text)
}

// Joined announces a new participant.
func Joined(ts, nick string) string {
	return System(ts, nick+" joined the chat")
}

// Left announces a departed participant.
func Left(ts, nick string) string {
	return System(ts, nick+" left the chat")
}

// Renamed announces a nick change.
func Renamed(ts, oldNick, newNick string) string {
	return System(ts, fmt.Sprintf("%s is now known as %s", oldNick, newNick))
}
