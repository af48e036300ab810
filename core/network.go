package core

import (
	"context"
	"errors"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/tchat/schema"
)

// Conn is an established text-frame connection.
type Conn interface {
	// Send writes one text frame.
	Send(payload []byte) error
	// TryRead returns one pending frame or schema.ErrWouldBlock.
	TryRead() (string, error)
	Close() error
}

// Dialer opens connections to one target.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
	Target() string
}

// Network is the network role of a chat session. It dials once, then
// alternates between forwarding one outbound payload and reading one inbound
// frame until the connection fails or ctx is cancelled. It never reconnects.
type Network struct {
	Dialer  Dialer
	Link    *Link
	Backoff time.Duration
}

// Run executes the network role. It returns nil when ctx ends the loop and a
// *schema.LinkError when the transport fails; either way the status has been
// updated and Link.Done is closed.
func (n *Network) Run(ctx context.Context) error {
	defer n.Link.finish()
	backoff := n.Backoff
	if backoff <= 0 {
		backoff = schema.DefaultBackoff
	}
	target := n.Dialer.Target()
	log := pslog.Ctx(ctx).With("backend", target)

	n.Link.Status.Set(schema.StatusConnecting(target))
	conn, err := n.Dialer.Dial(ctx)
	if err != nil {
		return n.fail(log, schema.ConnectFailure, err)
	}
	defer func() { _ = conn.Close() }()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	n.Link.Status.Set(schema.StatusConnected(target))
	log.Info("chat connected")

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	for {
		if ctx.Err() != nil {
			log.Debug("chat network stopped")
			return nil
		}
		if payload, ok := n.Link.nextOutbound(); ok {
			if err := conn.Send(payload); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return n.fail(log, schema.SendFailure, err)
			}
			log.Trace("chat frame sent", "bytes", len(payload))
		}
		msg, err := conn.TryRead()
		switch {
		case err == nil:
			if err := n.Link.deliver(ctx, msg); err != nil {
				return nil
			}
			log.Trace("chat frame received", "bytes", len(msg))
		case errors.Is(err, schema.ErrWouldBlock):
			timer.Reset(backoff)
			select {
			case <-ctx.Done():
				log.Debug("chat network stopped")
				return nil
			case <-timer.C:
			}
		default:
			if ctx.Err() != nil {
				return nil
			}
			return n.fail(log, schema.ReceiveFailure, err)
		}
	}
}

func (n *Network) fail(log pslog.Logger, kind schema.LinkErrorKind, err error) error {
	linkErr := &schema.LinkError{Kind: kind, Err: err}
	n.Link.Status.Set(linkErr.Error())
	log.Warn("chat network failed", "kind", kind.String(), "err", err)
	return linkErr
}
