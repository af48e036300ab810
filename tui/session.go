// Package tui is the UI role of a chat session: it decodes terminal keys,
// feeds them to the composer, drains inbound messages into the log, and
// paints the frame at a fixed cadence.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/tchat/core"
	"pkt.systems/tchat/internal/logx"
	"pkt.systems/tchat/schema"
)

const hintText = " Type your message (Enter to send, Tab+Enter for new line):"

// Options configures a Session.
type Options struct {
	Client schema.ClientConfig
	// Color enables themed ANSI colors.
	Color bool
	// SessionID tags log lines; optional.
	SessionID string
	// Now overrides the clock used for the Tab+Enter window.
	Now func() time.Time
}

// Session is the UI role of one chat session.
type Session struct {
	in       io.Reader
	screen   *screen
	link     *core.Link
	composer *core.Composer
	viewport *core.Viewport
	opts     Options
	theme    tuiTheme
	ctx      context.Context

	width     int
	height    int
	msgHeight int
}

// NewSession constructs a session reading keys from in and painting to out.
func NewSession(in io.Reader, out io.Writer, link *core.Link, opts Options) *Session {
	cfg := opts.Client
	return &Session{
		in:     in,
		screen: newScreen(out),
		link:   link,
		composer: core.NewComposer(core.ComposerOptions{
			Nick:       cfg.Nick,
			ArmWindow:  cfg.ArmWindow,
			StrictArm:  cfg.StrictArm,
			HistoryMax: cfg.HistoryMax,
			Now:        opts.Now,
		}),
		viewport: core.NewViewport(),
		opts:     opts,
		theme:    themeForName(cfg.Theme, opts.Color),
		width:    80,
		height:   24,
	}
}

func (s *Session) log() pslog.Logger {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return logx.WithSession(ctx, s.opts.SessionID, s.opts.Client.Nick)
}

// SetSize records the terminal size; non-positive values keep 80x24 defaults.
func (s *Session) SetSize(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	s.width = width
	s.height = height
}

// Composer exposes the composer, mainly for tests.
func (s *Session) Composer() *core.Composer {
	return s.composer
}

// Run drives the UI loop until Esc, input EOF, or ctx cancellation.
func (s *Session) Run(ctx context.Context, resize <-chan schema.Size) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx = ctx
	s.screen.EnterAltScreen()
	defer s.screen.ExitAltScreen()

	keyCtx, stopKeys := context.WithCancel(ctx)
	defer stopKeys()
	keys := make(chan core.Key, 16)
	go readKeys(keyCtx, s.in, keys)

	poll := s.opts.Client.PollInterval
	if poll <= 0 {
		poll = schema.DefaultPollInterval
	}
	timer := time.NewTimer(poll)
	defer timer.Stop()

	s.log().Info("tui session start", "width", s.width, "height", s.height)
	s.frame()
	for {
		timer.Reset(poll)
		select {
		case <-ctx.Done():
			s.log().Info("tui exit", "reason", "context")
			return nil
		case k, ok := <-keys:
			if !ok {
				s.log().Info("tui exit", "reason", "input closed")
				return nil
			}
			if s.handleKey(k) {
				s.log().Info("tui exit", "reason", "quit")
				return nil
			}
		case size, ok := <-resize:
			if !ok {
				resize = nil
				break
			}
			s.SetSize(size.Width, size.Height)
			s.screen.Invalidate()
			s.log().Debug("tui resize", "width", s.width, "height", s.height)
		case <-timer.C:
		}
		s.frame()
	}
}

// frame drains every pending inbound message into the log, then paints.
func (s *Session) frame() {
	if n := s.link.DrainInbound(); n > 0 {
		s.viewport.FollowTail()
		s.log().Trace("tui inbound drained", "count", n)
	}
	s.render()
}

func (s *Session) handleKey(k core.Key) bool {
	action := s.composer.HandleKey(k)
	if action.Err != nil {
		linkErr := &schema.LinkError{Kind: schema.SendQueueFailure, Err: action.Err}
		s.link.Status.Set(linkErr.Error())
		s.log().Warn("tui submit failed", "err", action.Err)
		return false
	}
	switch action.Kind {
	case core.ActionQuit:
		return true
	case core.ActionSubmit:
		if err := s.link.Submit(action.Payload); err != nil {
			s.log().Warn("tui submit failed", "err", err)
			return false
		}
		s.log().Debug("tui message queued", "len", len(action.Message))
	case core.ActionScroll:
		page := s.msgHeight
		if page < 1 {
			page = 1
		}
		s.viewport.Scroll(action.Pages * page)
	}
	return false
}

func (s *Session) render() {
	width, height := s.width, s.height
	theme := s.theme
	lines := make([]string, 0, height)

	title := fmt.Sprintf(" tchat | %s @ %s ", s.opts.Client.Nick, s.opts.Client.Backend)
	lines = append(lines, theme.bar(padToWidth(title, width)))

	buf := s.composer.Buffer()
	cursorLine, cursorCol := buf.Locate(buf.Cursor())
	maxInput := (height - 3) / 2
	inputLines, cursorRow, cursorX := renderInput(buf.Lines(), cursorLine, cursorCol, width, maxInput, theme)

	s.msgHeight = height - 3 - len(inputLines)
	if s.msgHeight < 0 {
		s.msgHeight = 0
	}
	frame := s.viewport.Frame(s.link.Log.Snapshot(), s.msgHeight)
	lines = append(lines, renderMessages(frame, width, s.msgHeight, theme)...)

	status := s.link.Status.Get()
	statusColor := theme.StatusFG
	if isErrorStatus(status) {
		statusColor = theme.ErrorFG
	}
	lines = append(lines, theme.fg(statusColor, trimANSIToWidth(" "+sanitizeOutputLine(status), width)))
	lines = append(lines, theme.fg(theme.HintFG, trimANSIToWidth(hintText, width)))

	lines = append(lines, inputLines...)
	cursorRow = len(lines) - len(inputLines) + cursorRow
	if err := s.screen.Render(lines, cursorRow, cursorX); err != nil {
		s.log().Warn("tui render failed", "err", err)
	}
}

func isErrorStatus(status string) bool {
	for _, prefix := range []string{"Connection failed:", "Send error:", "Receive error:"} {
		if strings.HasPrefix(status, prefix) {
			return true
		}
	}
	return false
}
