//go:build !unix

package tui

import (
	"context"
	"errors"

	"pkt.systems/tchat/core"
	"pkt.systems/tchat/schema"
)

// ErrNotTerminal is returned when the local chat is started without a TTY.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// RunLocal is only available on unix terminals.
func RunLocal(ctx context.Context, cfg schema.ClientConfig, dialer core.Dialer) error {
	return errors.New("local chat requires a unix terminal")
}

// ColorEnabled reports whether the local terminal should receive colors.
func ColorEnabled() bool {
	return false
}
