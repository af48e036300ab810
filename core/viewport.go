package core

import "strings"

// Viewport projects the message log onto a window of display lines.
// Offset counts lines from the top of the flattened log.
type Viewport struct {
	offset     int
	followTail bool
	lastMax    int
}

// NewViewport returns a viewport that follows the tail on its first frame.
func NewViewport() *Viewport {
	return &Viewport{followTail: true}
}

// Flatten splits every message on '\n' into display lines.
func Flatten(messages []string) []string {
	out := make([]string, 0, len(messages))
	for _, msg := range messages {
		out = append(out, strings.Split(msg, "\n")...)
	}
	return out
}

// FollowTail pins the next frame to the bottom of the log.
func (v *Viewport) FollowTail() {
	v.followTail = true
}

// Following reports whether the next frame will pin to the bottom.
func (v *Viewport) Following() bool {
	return v.followTail
}

// Offset returns the current top line.
func (v *Viewport) Offset() int {
	return v.offset
}

// Scroll moves the window by delta lines; negative scrolls toward older lines.
// Reaching the bottom of the last frame resumes following.
func (v *Viewport) Scroll(delta int) {
	if delta == 0 {
		return
	}
	v.followTail = false
	v.offset += delta
	if v.offset < 0 {
		v.offset = 0
	}
	if delta > 0 && v.offset >= v.lastMax {
		v.offset = v.lastMax
		v.followTail = true
	}
}

// Frame returns the visible slice of the flattened log for height rows.
func (v *Viewport) Frame(messages []string, height int) []string {
	if height < 0 {
		height = 0
	}
	lines := Flatten(messages)
	limit := maxScroll(len(lines), height)
	v.lastMax = limit
	if v.followTail {
		v.offset = limit
		v.followTail = false
	} else {
		v.offset = clampScroll(v.offset, len(lines), height)
	}
	end := v.offset + height
	if end > len(lines) {
		end = len(lines)
	}
	return lines[v.offset:end]
}

func maxScroll(total, limit int) int {
	if total <= limit {
		return 0
	}
	return total - limit
}

func clampScroll(offset, total, limit int) int {
	if offset < 0 {
		return 0
	}
	if top := maxScroll(total, limit); offset > top {
		return top
	}
	return offset
}
