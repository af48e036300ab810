// Package transport dials the chat relay over WebSocket and adapts the
// connection to the non-blocking read model of the network role.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"pkt.systems/tchat/core"
	"pkt.systems/tchat/schema"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 10 * time.Second
	closeFrameTimeout       = 250 * time.Millisecond
	frameBuffer             = 64
)

// Dialer opens WebSocket connections to one relay.
type Dialer struct {
	target string
	url    string
	ws     *websocket.Dialer
	header http.Header
}

// NewDialer builds a dialer for backend. A bare host:port becomes ws://host:port;
// http and https schemes map to ws and wss.
func NewDialer(backend string) (*Dialer, error) {
	raw, err := BackendURL(backend)
	if err != nil {
		return nil, err
	}
	return &Dialer{
		target: strings.TrimSpace(backend),
		url:    raw,
		ws: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
		header: http.Header{},
	}, nil
}

// BackendURL normalizes a backend address into a WebSocket URL.
func BackendURL(backend string) (string, error) {
	backend = strings.TrimSpace(backend)
	if backend == "" {
		return "", fmt.Errorf("%w: empty address", schema.ErrInvalidBackend)
	}
	if !strings.Contains(backend, "://") {
		backend = "ws://" + backend
	}
	u, err := url.Parse(backend)
	if err != nil {
		return "", fmt.Errorf("%w: %v", schema.ErrInvalidBackend, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", schema.ErrInvalidBackend, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", schema.ErrInvalidBackend)
	}
	return u.String(), nil
}

// Target returns the backend as configured, for status lines.
func (d *Dialer) Target() string {
	return d.target
}

// URL returns the normalized WebSocket URL.
func (d *Dialer) URL() string {
	return d.url
}

// Dial connects and starts the receive pump.
func (d *Dialer) Dial(ctx context.Context) (core.Conn, error) {
	conn, resp, err := d.ws.DialContext(ctx, d.url, d.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("HTTP %d: %w", resp.StatusCode, err)
		}
		return nil, err
	}
	c := &Conn{
		conn:   conn,
		frames: make(chan string, frameBuffer),
		closed: make(chan struct{}),
	}
	go c.receive()
	return c, nil
}

// Conn is a WebSocket connection with a background receive pump.
type Conn struct {
	conn    *websocket.Conn
	frames  chan string
	closed  chan struct{}
	once    sync.Once
	writeMu sync.Mutex

	errMu sync.Mutex
	err   error
}

// Send writes one text frame.
func (c *Conn) Send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// TryRead returns the next received frame without blocking. Frames received
// before a read error are returned before the error itself.
func (c *Conn) TryRead() (string, error) {
	select {
	case frame, ok := <-c.frames:
		if ok {
			return frame, nil
		}
		return "", c.readErr()
	default:
		return "", schema.ErrWouldBlock
	}
}

// Close sends a close frame and tears the connection down. When a Send is
// stalled the close frame is skipped and the socket is closed underneath it,
// so the Send fails right away.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.closed)
		if c.writeMu.TryLock() {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(closeFrameTimeout))
			c.writeMu.Unlock()
		}
		err = c.conn.Close()
	})
	return err
}

func (c *Conn) receive() {
	defer close(c.frames)
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.errMu.Lock()
			c.err = err
			c.errMu.Unlock()
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		select {
		case c.frames <- string(data):
		case <-c.closed:
			c.errMu.Lock()
			c.err = websocket.ErrCloseSent
			c.errMu.Unlock()
			return
		}
	}
}

func (c *Conn) readErr() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		return websocket.ErrCloseSent
	}
	return c.err
}
