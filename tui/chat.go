package tui

import (
	"context"
	"io"
	"time"

	"pkt.systems/tchat/core"
	"pkt.systems/tchat/schema"
)

// Chat runs one complete chat session: a network role dialing Dialer and a
// UI role on In/Out, joined when the UI exits.
type Chat struct {
	Config    schema.ClientConfig
	Dialer    core.Dialer
	In        io.Reader
	Out       io.Writer
	Color     bool
	Size      schema.Size
	Resize    <-chan schema.Size
	SessionID string
	Now       func() time.Time
}

// Run blocks until the UI role exits, then cancels and joins the network role.
func (c Chat) Run(ctx context.Context) error {
	cfg, err := schema.NormalizeClientConfig(c.Config)
	if err != nil {
		return err
	}
	link := core.NewLink(cfg.QueueDepth)
	netCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	network := &core.Network{Dialer: c.Dialer, Link: link, Backoff: cfg.Backoff}
	go func() { _ = network.Run(netCtx) }()

	sess := NewSession(c.In, c.Out, link, Options{
		Client:    cfg,
		Color:     c.Color,
		SessionID: c.SessionID,
		Now:       c.Now,
	})
	sess.SetSize(c.Size.Width, c.Size.Height)
	runErr := sess.Run(ctx, c.Resize)
	cancel()
	<-link.Done()
	return runErr
}
