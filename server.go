// Package tchat composes the chat relay and the SSH chat frontend into one
// process served by `tchat serve`.
package tchat

import (
	"context"
	"errors"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"

	"pkt.systems/pslog"
	"pkt.systems/tchat/httpapi"
	"pkt.systems/tchat/sshserver"
)

// Server composes the relay and SSH services.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	Relay httpapi.Config
	SSH   sshserver.Config
	// RelayListener and SSHListener replace the configured addresses when set.
	RelayListener net.Listener
	SSHListener   net.Listener
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableRelay bool
	enableSSH   bool
}

// WithRelay enables the WebSocket relay.
func WithRelay() ServerOption {
	return func(o *serverOptions) { o.enableRelay = true }
}

// WithSSH enables the SSH chat frontend.
func WithSSH() ServerOption {
	return func(o *serverOptions) { o.enableSSH = true }
}

// New constructs a composable tchat server.
func New(cfg ServerConfig, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.enableRelay && !options.enableSSH {
		return nil, errors.New("no services enabled")
	}

	s := &compositeServer{cfg: cfg, options: options}
	if options.enableSSH {
		sshSrv, err := sshserver.NewServer(cfg.SSH)
		if err != nil {
			return nil, err
		}
		sshSrv.Listener = cfg.SSHListener
		s.sshSrv = sshSrv
	}
	return s, nil
}

type compositeServer struct {
	cfg     ServerConfig
	options serverOptions
	sshSrv  *sshserver.Server
	logger  pslog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	group   *errgroup.Group
	done    chan struct{}
	err     error
	started bool
}

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(s.ctx)
	s.group = group
	s.done = make(chan struct{})
	s.started = true
	s.logger = pslog.Ctx(s.ctx)
	s.mu.Unlock()

	log := s.logger
	log.Info(
		"server start",
		"relay", s.options.enableRelay,
		"ssh", s.options.enableSSH,
		"relay_addr", s.cfg.Relay.Addr,
		"ssh_addr", s.cfg.SSH.Addr,
	)
	if s.options.enableRelay {
		hub := httpapi.NewHub(log, s.cfg.Relay.SubscriberDepth)
		handler := httpapi.NewServer(s.cfg.Relay, hub).Handler()
		group.Go(func() error {
			var err error
			if s.cfg.RelayListener != nil {
				err = httpapi.Serve(groupCtx, s.cfg.RelayListener, handler)
			} else {
				err = httpapi.ListenAndServe(groupCtx, s.cfg.Relay.Addr, handler)
			}
			if err != nil {
				log.Error("relay server failed", "err", err)
			}
			return err
		})
	}
	if s.options.enableSSH && s.sshSrv != nil {
		group.Go(func() error {
			err := s.sshSrv.ListenAndServe(groupCtx)
			if err != nil {
				log.Error("ssh server failed", "err", err)
			}
			return err
		})
	}
	go func() {
		err := group.Wait()
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	}()
	return nil
}

// Wait blocks until every service has returned. The first failure cancels
// the others and is returned.
func (s *compositeServer) Wait() error {
	s.mu.Lock()
	done := s.done
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}
	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		pslog.Ctx(s.ctx).Error("server stopped", "err", s.err)
	}
	return s.err
}

func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	started := s.started
	done := s.done
	log := s.logger
	s.mu.Unlock()
	if !started {
		return nil
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	log.Info("server stop requested")
	cancel()
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-done:
		log.Info("server stopped")
		return nil
	}
}
