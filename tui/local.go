//go:build unix

package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/muesli/termenv"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
	"pkt.systems/tchat/core"
	"pkt.systems/tchat/schema"
)

// ErrNotTerminal is returned when the local chat is started without a TTY.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// RunLocal runs a chat session on the process terminal. It switches stdin to
// raw mode and restores it before returning.
func RunLocal(ctx context.Context, cfg schema.ClientConfig, dialer core.Dialer) error {
	inFd := int(os.Stdin.Fd())
	outFd := int(os.Stdout.Fd())
	if !term.IsTerminal(inFd) {
		return ErrNotTerminal
	}
	state, err := term.MakeRaw(inFd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer func() { _ = term.Restore(inFd, state) }()

	width, height, err := term.GetSize(outFd)
	if err != nil {
		width, height = 80, 24
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGWINCH)
	defer signal.Stop(sigCh)
	resize := make(chan schema.Size, 1)
	resizeCtx, stopResize := context.WithCancel(ctx)
	defer stopResize()
	go func() {
		for {
			select {
			case <-resizeCtx.Done():
				return
			case <-sigCh:
				w, h, err := term.GetSize(outFd)
				if err != nil {
					continue
				}
				select {
				case resize <- schema.Size{Width: w, Height: h}:
				default:
				}
			}
		}
	}()

	return Chat{
		Config: cfg,
		Dialer: dialer,
		In:     os.Stdin,
		Out:    os.Stdout,
		Color:  ColorEnabled(),
		Size:   schema.Size{Width: width, Height: height},
		Resize: resize,
	}.Run(ctx)
}

// ColorEnabled reports whether the local terminal should receive colors.
func ColorEnabled() bool {
	if termenv.EnvNoColor() {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}
