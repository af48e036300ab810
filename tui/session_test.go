package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"pkt.systems/tchat/core"
	"pkt.systems/tchat/schema"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// echoConn answers every sent envelope with a formatted chat line.
type echoConn struct {
	mu      sync.Mutex
	pending []string
	sent    []string
}

func (c *echoConn) Send(payload []byte) error {
	env, ok := schema.DecodeEnvelope(payload)
	if !ok {
		return errors.New("bad envelope")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, string(payload))
	c.pending = append(c.pending, "[12:00:00] "+string(env.Nick)+": "+env.Message)
	return nil
}

func (c *echoConn) TryRead() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return "", schema.ErrWouldBlock
	}
	next := c.pending[0]
	c.pending = c.pending[1:]
	return next, nil
}

func (c *echoConn) Close() error { return nil }

func (c *echoConn) sentFrames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

type testDialer struct {
	conn core.Conn
	err  error
}

func (d testDialer) Dial(context.Context) (core.Conn, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func (d testDialer) Target() string { return "relay.test:9001" }

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startChat(t *testing.T, dialer core.Dialer) (*io.PipeWriter, *lockedBuffer, <-chan error) {
	t.Helper()
	pr, pw := io.Pipe()
	out := &lockedBuffer{}
	errCh := make(chan error, 1)
	chat := Chat{
		Config: schema.ClientConfig{Nick: "tester", Backend: "relay.test:9001", PollInterval: time.Millisecond},
		Dialer: dialer,
		In:     pr,
		Out:    out,
		Size:   schema.Size{Width: 60, Height: 12},
	}
	go func() { errCh <- chat.Run(context.Background()) }()
	return pw, out, errCh
}

func finishChat(t *testing.T, pw *io.PipeWriter, errCh <-chan error) {
	t.Helper()
	if _, err := pw.Write([]byte{0x1b}); err != nil {
		t.Fatalf("write escape: %v", err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("expected clean exit, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("chat did not exit on escape")
	}
	_ = pw.Close()
}

func TestChatSubmitRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)
	conn := &echoConn{}
	pw, out, errCh := startChat(t, testDialer{conn: conn})

	if _, err := pw.Write([]byte("hello\r")); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitUntil(t, "envelope sent", func() bool { return len(conn.sentFrames()) == 1 })
	var env map[string]string
	if err := json.Unmarshal([]byte(conn.sentFrames()[0]), &env); err != nil {
		t.Fatalf("decode sent frame: %v", err)
	}
	if env["nick"] != "tester" || env["message"] != "hello" {
		t.Fatalf("unexpected envelope: %v", env)
	}
	waitUntil(t, "echo rendered", func() bool { return strings.Contains(out.String(), "[12:00:00] tester: hello") })
	if !strings.Contains(out.String(), "Connected to relay.test:9001") {
		t.Fatalf("expected connected status in output")
	}
	if !strings.Contains(out.String(), "tchat | tester @ relay.test:9001") {
		t.Fatalf("expected title in output")
	}
	finishChat(t, pw, errCh)
	if !strings.HasSuffix(out.String(), "\x1b[?1049l\x1b[?25h") {
		t.Fatalf("expected alt screen restored on exit")
	}
}

func TestChatShowsConnectFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	pw, out, errCh := startChat(t, testDialer{err: errors.New("connection refused")})
	waitUntil(t, "failure status", func() bool {
		return strings.Contains(out.String(), "Connection failed: connection refused")
	})
	finishChat(t, pw, errCh)
}

func TestChatRejectsInvalidConfig(t *testing.T) {
	chat := Chat{Config: schema.ClientConfig{Nick: " ", Backend: "x"}, Dialer: testDialer{}}
	if err := chat.Run(context.Background()); !errors.Is(err, schema.ErrInvalidNick) {
		t.Fatalf("expected ErrInvalidNick, got %v", err)
	}
}

func TestSessionScrollsByPage(t *testing.T) {
	link := core.NewLink(4)
	for i := 0; i < 30; i++ {
		link.Log.Append("line")
	}
	sess := NewSession(strings.NewReader(""), io.Discard, link, Options{Client: schema.ClientConfig{Nick: "n", Backend: "b"}})
	sess.SetSize(40, 10)
	sess.frame()
	bottom := 30 - sess.msgHeight
	if got := sess.viewport.Offset(); got != bottom {
		t.Fatalf("expected offset %d, got %d", bottom, got)
	}
	sess.handleKey(core.Key{Kind: core.KeyPageUp})
	sess.frame()
	if got := sess.viewport.Offset(); got != bottom-sess.msgHeight {
		t.Fatalf("expected offset %d after page up, got %d", bottom-sess.msgHeight, got)
	}
	sess.handleKey(core.Key{Kind: core.KeyPageDown})
	sess.frame()
	if got := sess.viewport.Offset(); got != bottom {
		t.Fatalf("expected offset %d after page down, got %d", bottom, got)
	}
}

func TestSessionSubmitOnClosedLinkSetsStatus(t *testing.T) {
	link := core.NewLink(1)
	sess := NewSession(strings.NewReader(""), io.Discard, link, Options{Client: schema.ClientConfig{Nick: "n", Backend: "b"}})
	for _, k := range []core.Key{{Kind: core.KeyRune, Rune: 'a'}, {Kind: core.KeyEnter}} {
		sess.handleKey(k)
	}
	for _, k := range []core.Key{{Kind: core.KeyRune, Rune: 'b'}, {Kind: core.KeyEnter}} {
		sess.handleKey(k)
	}
	if status := link.Status.Get(); !strings.HasPrefix(status, "Send error: ") {
		t.Fatalf("expected send error status, got %q", status)
	}
}
