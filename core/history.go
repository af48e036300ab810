package core

import "pkt.systems/tchat/schema"

// History holds submitted messages and a browse index. The index equals Len
// after a submit. Once an entry is loaded the history keeps browsing until
// the buffer is edited, even when that entry spans several lines.
type History struct {
	entries  []string
	index    int
	max      int
	browsing bool
}

// NewHistory returns an empty history keeping at most max entries.
func NewHistory(max int) *History {
	if max <= 0 {
		max = schema.DefaultHistoryMax
	}
	return &History{max: max}
}

// Record appends a submitted message and stops browsing.
func (h *History) Record(message string) {
	h.entries = append(h.entries, message)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
	h.index = len(h.entries)
	h.browsing = false
}

// Browsing reports whether the buffer still holds an unedited entry.
func (h *History) Browsing() bool {
	return h.browsing
}

// StopBrowsing marks the loaded entry as edited. The index is kept.
func (h *History) StopBrowsing() {
	h.browsing = false
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Index returns the browse index.
func (h *History) Index() int {
	return h.index
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

func (h *History) canBrowse(buf *Buffer) bool {
	return len(h.entries) > 0 && (h.browsing || buf.IsSingleLine())
}

// BrowseUp loads the previous entry into buf, wrapping from the oldest entry
// to the newest. It does nothing unless buf is a single line or holds a
// loaded entry.
func (h *History) BrowseUp(buf *Buffer) bool {
	if !h.canBrowse(buf) {
		return false
	}
	if h.index == 0 {
		h.index = len(h.entries)
	}
	h.index--
	if h.index < 0 || h.index >= len(h.entries) {
		return false
	}
	h.load(buf)
	return true
}

// BrowseDown loads the next entry into buf, wrapping from the newest entry to
// the oldest. It does nothing unless buf is a single line or holds a loaded
// entry.
func (h *History) BrowseDown(buf *Buffer) bool {
	if !h.canBrowse(buf) {
		return false
	}
	h.index = (h.index + 1) % len(h.entries)
	h.load(buf)
	return true
}

func (h *History) load(buf *Buffer) {
	buf.SetText(h.entries[h.index])
	h.browsing = true
}
