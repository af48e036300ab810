package core

import "testing"

func historyOf(entries ...string) *History {
	h := NewHistory(0)
	for _, e := range entries {
		h.Record(e)
	}
	return h
}

func TestHistoryRecordResetsIndex(t *testing.T) {
	h := historyOf("a", "b")
	if h.Index() != 2 {
		t.Fatalf("expected index 2, got %d", h.Index())
	}
	buf := NewBuffer()
	h.BrowseUp(buf)
	h.Record("c")
	if h.Index() != 3 || h.Len() != 3 {
		t.Fatalf("expected index 3 len 3, got %d %d", h.Index(), h.Len())
	}
}

func TestHistoryBrowseUpFromSentinel(t *testing.T) {
	h := historyOf("first", "second", "thïrd")
	buf := NewBuffer()
	if !h.BrowseUp(buf) {
		t.Fatalf("expected browse up to load an entry")
	}
	if buf.Text() != "thïrd" || buf.Cursor() != 5 {
		t.Fatalf("expected thïrd with cursor 5, got %q cursor %d", buf.Text(), buf.Cursor())
	}
	h.BrowseUp(buf)
	h.BrowseUp(buf)
	if buf.Text() != "first" || h.Index() != 0 {
		t.Fatalf("expected first at index 0, got %q at %d", buf.Text(), h.Index())
	}
	h.BrowseUp(buf)
	if buf.Text() != "thïrd" || h.Index() != 2 {
		t.Fatalf("expected wrap to newest, got %q at %d", buf.Text(), h.Index())
	}
}

func TestHistoryBrowseDownWraps(t *testing.T) {
	h := historyOf("a", "b", "c")
	buf := NewBuffer()
	h.BrowseUp(buf)
	h.BrowseDown(buf)
	if buf.Text() != "a" || h.Index() != 0 {
		t.Fatalf("expected wrap to oldest, got %q at %d", buf.Text(), h.Index())
	}
}

func TestHistoryUpDownCycle(t *testing.T) {
	h := historyOf("a", "b", "c", "d")
	buf := NewBuffer()
	for start := 0; start < h.Len(); start++ {
		h.index = start
		h.BrowseUp(buf)
		h.BrowseDown(buf)
		if h.Index() != start {
			t.Fatalf("expected index %d after up/down, got %d", start, h.Index())
		}
	}
}

func TestHistoryUpDownCycleWithMultiLineEntry(t *testing.T) {
	h := historyOf("x", "a\nb", "y")
	buf := NewBuffer()
	for start := 0; start < h.Len(); start++ {
		h.index = start
		h.BrowseUp(buf)
		h.BrowseDown(buf)
		if h.Index() != start {
			t.Fatalf("expected index %d after up/down, got %d", start, h.Index())
		}
		if buf.Text() != h.entries[start] {
			t.Fatalf("expected %q loaded, got %q", h.entries[start], buf.Text())
		}
	}
}

func TestHistoryKeepsBrowsingPastMultiLineEntry(t *testing.T) {
	h := historyOf("x", "a\nb", "y")
	buf := NewBuffer()
	h.BrowseUp(buf)
	h.BrowseUp(buf)
	if buf.Text() != "a\nb" || buf.IsSingleLine() || !h.Browsing() {
		t.Fatalf("expected multi-line entry loaded while browsing, got %q browsing=%v", buf.Text(), h.Browsing())
	}
	if !h.BrowseUp(buf) || buf.Text() != "x" {
		t.Fatalf("expected browse up past multi-line entry, got %q", buf.Text())
	}
	h.BrowseDown(buf)
	h.StopBrowsing()
	if h.BrowseDown(buf) {
		t.Fatalf("expected edited multi-line buffer to stop browsing")
	}
	if h.Index() != 1 {
		t.Fatalf("expected index kept at 1, got %d", h.Index())
	}
	h.Record("z")
	if h.Browsing() {
		t.Fatalf("expected record to end browsing")
	}
}

func TestHistoryDisabledForMultiLine(t *testing.T) {
	h := historyOf("a")
	buf := NewBuffer()
	buf.SetText("x\ny")
	if h.BrowseUp(buf) || h.BrowseDown(buf) {
		t.Fatalf("expected browsing disabled for multi-line buffer")
	}
	if buf.Text() != "x\ny" || h.Index() != 1 {
		t.Fatalf("expected buffer and index untouched, got %q at %d", buf.Text(), h.Index())
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(0)
	buf := NewBuffer()
	if h.BrowseUp(buf) || h.BrowseDown(buf) {
		t.Fatalf("expected no-op on empty history")
	}
}

func TestHistoryRespectsMax(t *testing.T) {
	h := NewHistory(2)
	h.Record("a")
	h.Record("b")
	h.Record("c")
	entries := h.Entries()
	if len(entries) != 2 || entries[0] != "b" || entries[1] != "c" {
		t.Fatalf("unexpected entries: %v", entries)
	}
	if h.Index() != 2 {
		t.Fatalf("expected index 2, got %d", h.Index())
	}
}
