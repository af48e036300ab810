package core

import (
	"time"

	"pkt.systems/tchat/schema"
)

// Gesture tracks the Tab then Enter chord. A Tab arms it; the next Enter
// consumes the arm and reports whether it fell inside the window.
type Gesture struct {
	window  time.Duration
	strict  bool
	now     func() time.Time
	armed   bool
	armedAt time.Time
}

// NewGesture returns an idle gesture. A nil now uses time.Now. With strict set,
// keys other than Tab and Enter cancel a pending arm.
func NewGesture(window time.Duration, strict bool, now func() time.Time) *Gesture {
	if window <= 0 {
		window = schema.DefaultArmWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Gesture{window: window, strict: strict, now: now}
}

// Tab arms the gesture, restarting the window if already armed.
func (g *Gesture) Tab() {
	g.armed = true
	g.armedAt = g.now()
}

// Enter consumes any arm and reports true when Enter should insert a newline.
func (g *Gesture) Enter() bool {
	if !g.armed {
		return false
	}
	g.armed = false
	return g.now().Sub(g.armedAt) < g.window
}

// Other is called for every key that is neither Tab nor Enter.
func (g *Gesture) Other() {
	if g.strict {
		g.armed = false
	}
}

// Armed reports whether a Tab is pending.
func (g *Gesture) Armed() bool {
	return g.armed
}
