// Package sshserver serves the chat client over SSH: every PTY session runs
// its own client against the configured relay, using the SSH user as nick.
// Logins are not authenticated; the SSH user name only picks the nick.
package sshserver

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	gliderssh "github.com/gliderlabs/ssh"
	"github.com/google/uuid"

	"pkt.systems/pslog"
	"pkt.systems/tchat/core"
	"pkt.systems/tchat/internal/logx"
	"pkt.systems/tchat/internal/transport"
	"pkt.systems/tchat/schema"
	"pkt.systems/tchat/tui"
)

// Server exposes the chat client over SSH.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	Client      schema.ClientConfig
	Dialer      core.Dialer
	logger      pslog.Logger
}

// NewServer builds a server from cfg. The websocket dialer is built up front
// so a bad backend fails before listening.
func NewServer(cfg Config) (*Server, error) {
	s := &Server{
		Addr:        cfg.Addr,
		HostKeyPath: cfg.HostKeyPath,
		Client:      cfg.Client,
		Dialer:      cfg.Dialer,
	}
	if s.Dialer == nil {
		dialer, err := transport.NewDialer(cfg.Client.Backend)
		if err != nil {
			return nil, err
		}
		s.Dialer = dialer
	}
	return s, nil
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}
	if s.Dialer == nil {
		return errors.New("ssh frontend requires a dialer")
	}

	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}
	s.logger.Info("ssh host key", "path", s.HostKeyPath, "fingerprint", HostKeyFingerprint(signer))

	server := &gliderssh.Server{
		Addr:    s.Addr,
		Handler: s.handleSession,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			s.logger.Info("ssh listening", "addr", s.Listener.Addr().String())
			errCh <- server.Serve(s.Listener)
			return
		}
		s.logger.Info("ssh listening", "addr", s.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		if errors.Is(err, gliderssh.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleSession(sess gliderssh.Session) {
	log := s.logger
	if log == nil {
		log = pslog.Ctx(sess.Context())
	}
	remote := sess.RemoteAddr().String()
	nick, err := schema.NormalizeNick(sess.User())
	if err != nil {
		log.Info("ssh session rejected", "reason", "invalid nick", "remote", remote)
		_, _ = io.WriteString(sess, "invalid nick\r\n")
		return
	}
	sessionID := uuid.NewString()
	log = log.With("session", sessionID, "nick", nick, "remote", remote)
	ctx := logx.ContextWithSessionLogger(sess.Context(), log, sessionID)

	pty, winCh, ok := sess.Pty()
	if !ok {
		log.Info("ssh session rejected", "reason", "pty required")
		_, _ = io.WriteString(sess, "pty required\r\n")
		return
	}

	client := s.Client
	client.Nick = nick
	resize := make(chan schema.Size, 1)
	go forwardResize(ctx, winCh, resize)

	log.Info("ssh session opened", "term", pty.Term)
	err = tui.Chat{
		Config:    client,
		Dialer:    s.Dialer,
		In:        sess,
		Out:       sess,
		Color:     sessionColor(pty.Term, sess.Environ()),
		Size:      schema.Size{Width: pty.Window.Width, Height: pty.Window.Height},
		Resize:    resize,
		SessionID: sessionID,
	}.Run(ctx)
	if err != nil {
		log.Warn("ssh session failed", "err", err)
		_, _ = io.WriteString(sess, err.Error()+"\r\n")
		_ = sess.Exit(1)
		return
	}
	log.Info("ssh session closed", "term", pty.Term)
}

// forwardResize converts window changes into sizes, keeping only the latest.
func forwardResize(ctx context.Context, winCh <-chan gliderssh.Window, out chan schema.Size) {
	for {
		select {
		case <-ctx.Done():
			return
		case win, ok := <-winCh:
			if !ok {
				return
			}
			size := schema.Size{Width: win.Width, Height: win.Height}
			select {
			case out <- size:
			default:
				select {
				case <-out:
				default:
				}
				out <- size
			}
		}
	}
}

func sessionColor(term string, environ []string) bool {
	if term == "" || term == "dumb" {
		return false
	}
	for _, kv := range environ {
		if name, value, ok := strings.Cut(kv, "="); ok && name == "NO_COLOR" && value != "" {
			return false
		}
	}
	return true
}
