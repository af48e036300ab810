package sshserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"pkt.systems/tchat/core"
	"pkt.systems/tchat/schema"
)

type refusedDialer struct{}

func (refusedDialer) Dial(context.Context) (core.Conn, error) {
	return nil, errors.New("refused")
}

func (refusedDialer) Target() string { return "relay.test:9001" }

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

func startServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv, err := NewServer(Config{
		HostKeyPath: filepath.Join(t.TempDir(), "host_key"),
		Client:      schema.ClientConfig{Backend: "relay.test:9001"},
		Dialer:      refusedDialer{},
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv.Listener = ln
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("serve: %v", err)
		}
	})
	return ln.Addr().String()
}

func TestServerRunsChatPerSession(t *testing.T) {
	addr := startServer(t)
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "alice",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         3 * time.Second,
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	sess, err := client.NewSession()
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer sess.Close()
	if err := sess.RequestPty("xterm-256color", 24, 80, ssh.TerminalModes{}); err != nil {
		t.Fatalf("pty: %v", err)
	}
	stdin, err := sess.StdinPipe()
	if err != nil {
		t.Fatalf("stdin: %v", err)
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		t.Fatalf("stdout: %v", err)
	}
	out := &lockedBuffer{}
	go func() { _, _ = io.Copy(out, stdout) }()
	if err := sess.Shell(); err != nil {
		t.Fatalf("shell: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "Connection failed: refused") {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for status, got %q", out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !strings.Contains(out.String(), "alice @ relay.test:9001") {
		t.Fatalf("expected nick from ssh user in title")
	}
	if _, err := stdin.Write([]byte{0x1b}); err != nil {
		t.Fatalf("write escape: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- sess.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean exit, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("session did not exit")
	}
}

func TestServerRequiresPty(t *testing.T) {
	addr := startServer(t)
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "bob",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         3 * time.Second,
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
	sess, err := client.NewSession()
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer sess.Close()
	output, _ := sess.Output("")
	if !strings.Contains(string(output), "pty required") {
		t.Fatalf("expected pty required, got %q", output)
	}
}

func TestSessionColor(t *testing.T) {
	if sessionColor("dumb", nil) {
		t.Fatalf("expected dumb terminal without color")
	}
	if sessionColor("xterm", []string{"NO_COLOR=1"}) {
		t.Fatalf("expected NO_COLOR honoured")
	}
	if !sessionColor("xterm", []string{"LANG=C"}) {
		t.Fatalf("expected color for xterm")
	}
}
