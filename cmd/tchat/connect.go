package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/pslog"
	"pkt.systems/tchat/internal/appconfig"
	"pkt.systems/tchat/internal/logx"
	"pkt.systems/tchat/internal/transport"
	"pkt.systems/tchat/schema"
	"pkt.systems/tchat/tui"
)

type connectOptions struct {
	nick       string
	backend    string
	configPath string
	theme      string
}

// applyFlags overlays non-empty flags on the configured client section.
func applyFlags(cfg appconfig.ClientConfig, opts connectOptions) appconfig.ClientConfig {
	if v := strings.TrimSpace(opts.nick); v != "" {
		cfg.Nick = v
	}
	if v := strings.TrimSpace(opts.backend); v != "" {
		cfg.Backend = v
	}
	if v := strings.TrimSpace(opts.theme); v != "" {
		cfg.Theme = v
	}
	return cfg
}

func runConnect(cmd *cobra.Command, opts connectOptions) error {
	cfg, err := appconfig.Load(opts.configPath)
	if err != nil {
		return err
	}
	client := applyFlags(cfg.Client, opts)
	if strings.TrimSpace(client.Nick) == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("nick is required; pass --nick or set client.nick")
		}
		nick, err := promptNick(os.Getenv("USER"))
		if err != nil {
			return err
		}
		client.Nick = nick
	}
	session, err := schema.NormalizeClientConfig(client.Session())
	if err != nil {
		return err
	}
	dialer, err := transport.NewDialer(session.Backend)
	if err != nil {
		return err
	}

	logger, closer, err := logx.OpenFile(client.LogFile, client.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	log.SetOutput(pslog.LogLogger(logger).Writer())
	ctx := pslog.ContextWithLogger(cmd.Context(), logger)
	logger.Info("client start", "nick", session.Nick, "backend", dialer.URL())

	if err := tui.RunLocal(ctx, session, dialer); err != nil {
		if errors.Is(err, tui.ErrNotTerminal) {
			return fmt.Errorf("%w; run tchat from an interactive terminal", err)
		}
		return err
	}
	logger.Info("client exit")
	return nil
}

func promptNick(suggested string) (string, error) {
	nick := suggested
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nickname").
				Description("Shown to everyone on the relay.").
				Validate(func(s string) error {
					if _, err := schema.NormalizeNick(s); err != nil {
						return fmt.Errorf("nick must be 1-%d printable characters", schema.MaxNickLength)
					}
					return nil
				}).
				Value(&nick),
		),
	).Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(nick), nil
}
