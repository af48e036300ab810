package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/goleak"
	"pkt.systems/tchat/core"
	"pkt.systems/tchat/schema"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(msgType, append([]byte("echo: "), data...)); err != nil {
				return
			}
		}
	}))
}

func readFrame(t *testing.T, conn core.Conn) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		frame, err := conn.TryRead()
		if err == nil {
			return frame
		}
		if !errors.Is(err, schema.ErrWouldBlock) {
			t.Fatalf("read: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for frame")
	return ""
}

func TestBackendURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"localhost:9001", "ws://localhost:9001", true},
		{" localhost:9001 ", "ws://localhost:9001", true},
		{"ws://chat.example.com/ws", "ws://chat.example.com/ws", true},
		{"https://chat.example.com", "wss://chat.example.com", true},
		{"http://127.0.0.1:8080/ws", "ws://127.0.0.1:8080/ws", true},
		{"", "", false},
		{"ftp://example.com", "", false},
		{"ws://", "", false},
	}
	for _, tc := range cases {
		got, err := BackendURL(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.in, err)
		}
		if !tc.ok {
			if !errors.Is(err, schema.ErrInvalidBackend) {
				t.Fatalf("%q: expected ErrInvalidBackend, got %v", tc.in, err)
			}
			continue
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestConnSendAndTryRead(t *testing.T) {
	defer goleak.VerifyNone(t)
	server := echoServer(t)
	defer server.Close()

	dialer, err := NewDialer(server.URL)
	if err != nil {
		t.Fatalf("new dialer: %v", err)
	}
	if !strings.HasPrefix(dialer.URL(), "ws://") {
		t.Fatalf("expected ws url, got %q", dialer.URL())
	}
	conn, err := dialer.Dial(context.Background())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.TryRead(); !errors.Is(err, schema.ErrWouldBlock) {
		t.Fatalf("expected ErrWouldBlock before any frame, got %v", err)
	}
	if err := conn.Send([]byte(`{"nick":"a","message":"hi"}`)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := readFrame(t, conn); got != `echo: {"nick":"a","message":"hi"}` {
		t.Fatalf("unexpected frame: %q", got)
	}
}

func TestConnReportsPeerClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte("bye"))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"))
		_ = conn.Close()
	}))
	defer server.Close()

	dialer, err := NewDialer(server.URL)
	if err != nil {
		t.Fatalf("new dialer: %v", err)
	}
	conn, err := dialer.Dial(context.Background())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if got := readFrame(t, conn); got != "bye" {
		t.Fatalf("expected bye, got %q", got)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		_, err := conn.TryRead()
		if err != nil && !errors.Is(err, schema.ErrWouldBlock) {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
				t.Fatalf("expected going-away close, got %v", err)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for close error")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCloseUnblocksStalledSend(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-release
	}))
	defer server.Close()
	defer close(release)

	dialer, err := NewDialer(server.URL)
	if err != nil {
		t.Fatalf("new dialer: %v", err)
	}
	conn, err := dialer.Dial(context.Background())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	payload := []byte(strings.Repeat("x", 8<<20))
	sendErr := make(chan error, 1)
	go func() {
		for {
			if err := conn.Send(payload); err != nil {
				sendErr <- err
				return
			}
		}
	}()
	time.Sleep(500 * time.Millisecond)

	start := time.Now()
	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("expected close to return promptly, took %s", elapsed)
	}
	select {
	case err := <-sendErr:
		if err == nil {
			t.Fatalf("expected send error after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected stalled send to fail after close")
	}
}

func TestDialFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	dialer, err := NewDialer(server.URL)
	if err != nil {
		t.Fatalf("new dialer: %v", err)
	}
	if _, err := dialer.Dial(context.Background()); err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Fatalf("expected HTTP 404 dial error, got %v", err)
	}
}

func TestNetworkOverWebSocket(t *testing.T) {
	defer goleak.VerifyNone(t)
	server := echoServer(t)
	defer server.Close()

	dialer, err := NewDialer(server.URL)
	if err != nil {
		t.Fatalf("new dialer: %v", err)
	}
	link := core.NewLink(8)
	ctx, cancel := context.WithCancel(context.Background())
	n := &core.Network{Dialer: dialer, Link: link, Backoff: time.Millisecond}
	errCh := make(chan error, 1)
	go func() { errCh <- n.Run(ctx) }()

	if err := link.Submit([]byte("ping")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for link.Log.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for echo, status %q", link.Status.Get())
		}
		link.DrainInbound()
		time.Sleep(2 * time.Millisecond)
	}
	if got := link.Log.Snapshot()[0]; got != "echo: ping" {
		t.Fatalf("unexpected message: %q", got)
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}
