package core

import (
	"strings"
	"time"

	"pkt.systems/tchat/schema"
)

// ActionKind is what the UI role must do after a key.
type ActionKind int

const (
	// ActionNone means only local state changed.
	ActionNone ActionKind = iota
	// ActionSubmit carries an encoded envelope for the outbound queue.
	ActionSubmit
	// ActionQuit ends the session.
	ActionQuit
	// ActionScroll pages the message viewport by Pages (negative is up).
	ActionScroll
)

// Action is the result of Composer.HandleKey.
type Action struct {
	Kind    ActionKind
	Payload []byte
	Message string
	Pages   int
	Err     error
}

// ComposerOptions configures a composer.
type ComposerOptions struct {
	Nick       schema.Nick
	ArmWindow  time.Duration
	StrictArm  bool
	HistoryMax int
	Now        func() time.Time
}

// Composer routes keys to the buffer, history, and Tab+Enter gesture.
type Composer struct {
	nick    schema.Nick
	buf     *Buffer
	history *History
	gesture *Gesture
}

// NewComposer returns an empty composer.
func NewComposer(opts ComposerOptions) *Composer {
	return &Composer{
		nick:    opts.Nick,
		buf:     NewBuffer(),
		history: NewHistory(opts.HistoryMax),
		gesture: NewGesture(opts.ArmWindow, opts.StrictArm, opts.Now),
	}
}

// Buffer exposes the composer text for rendering.
func (c *Composer) Buffer() *Buffer {
	return c.buf
}

// History exposes the submitted messages.
func (c *Composer) History() *History {
	return c.history
}

// Nick returns the nick attached to submitted messages.
func (c *Composer) Nick() schema.Nick {
	return c.nick
}

// HandleKey applies one key press.
func (c *Composer) HandleKey(k Key) Action {
	switch k.Kind {
	case KeyTab:
		c.gesture.Tab()
		return Action{}
	case KeyEnter:
		if c.gesture.Enter() {
			c.history.StopBrowsing()
			c.buf.SplitLine()
			return Action{}
		}
		return c.submit()
	}
	c.gesture.Other()
	switch k.Kind {
	case KeyUp, KeyDown, KeyPageUp, KeyPageDown:
	default:
		c.history.StopBrowsing()
	}
	switch k.Kind {
	case KeyEscape, KeyCtrlC:
		return Action{Kind: ActionQuit}
	case KeyRune:
		c.buf.InsertRune(k.Rune)
	case KeyPaste:
		c.buf.InsertString(k.Text)
	case KeyBackspace:
		c.buf.Backspace()
	case KeyDelete:
		c.buf.DeleteForward()
	case KeyLeft:
		c.buf.MoveLeft()
	case KeyRight:
		c.buf.MoveRight()
	case KeyUp:
		if c.buf.IsSingleLine() || c.history.Browsing() {
			c.history.BrowseUp(c.buf)
		} else {
			c.buf.MoveUp()
		}
	case KeyDown:
		if c.buf.IsSingleLine() || c.history.Browsing() {
			c.history.BrowseDown(c.buf)
		} else {
			c.buf.MoveDown()
		}
	case KeyHome:
		c.buf.MoveHome()
	case KeyEnd:
		c.buf.MoveEnd()
	case KeyPageUp:
		return Action{Kind: ActionScroll, Pages: -1}
	case KeyPageDown:
		return Action{Kind: ActionScroll, Pages: 1}
	}
	return Action{}
}

func (c *Composer) submit() Action {
	text := c.buf.Text()
	c.buf.Reset()
	if strings.TrimSpace(text) == "" {
		return Action{}
	}
	c.history.Record(text)
	payload, err := schema.Envelope{Nick: string(c.nick), Message: text}.Encode()
	if err != nil {
		return Action{Err: err}
	}
	return Action{Kind: ActionSubmit, Payload: payload, Message: text}
}
