package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/tchat"
	"pkt.systems/tchat/httpapi"
	"pkt.systems/tchat/internal/appconfig"
	"pkt.systems/tchat/schema"
	"pkt.systems/tchat/sshserver"
)

type serveOptions struct {
	configPath string
	addr       string
	ssh        bool
	sshAddr    string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat relay (and optionally the SSH frontend)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(opts.configPath)
			if err != nil {
				return err
			}
			cfg = applyServeFlags(cfg, opts, cmd.Flags().Changed("ssh"))
			if err := appconfig.Validate(cfg); err != nil {
				return err
			}

			serverOpts := []tchat.ServerOption{tchat.WithRelay()}
			if cfg.SSH.Enabled {
				serverOpts = append(serverOpts, tchat.WithSSH())
			}
			server, err := tchat.New(tchat.ServerConfig{
				Relay: toRelayConfig(cfg.Relay),
				SSH:   toSSHConfig(cfg),
			}, serverOpts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("server stop failed", "err", err)
				}
			}()
			if err := server.Start(ctx); err != nil {
				return err
			}
			return server.Wait()
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "relay listen address (overrides relay.addr)")
	cmd.Flags().BoolVar(&opts.ssh, "ssh", false, "also serve the chat client over SSH")
	cmd.Flags().StringVar(&opts.sshAddr, "ssh-addr", "", "SSH listen address (overrides ssh.addr)")
	return cmd
}

func applyServeFlags(cfg appconfig.Config, opts serveOptions, sshChanged bool) appconfig.Config {
	if v := strings.TrimSpace(opts.addr); v != "" {
		cfg.Relay.Addr = v
	}
	if sshChanged {
		cfg.SSH.Enabled = opts.ssh
	}
	if v := strings.TrimSpace(opts.sshAddr); v != "" {
		cfg.SSH.Addr = v
	}
	return cfg
}

func toRelayConfig(cfg appconfig.RelayConfig) httpapi.Config {
	return httpapi.Config{
		Addr:            cfg.Addr,
		RateLimit:       cfg.RateLimit,
		RateBurst:       cfg.RateBurst,
		SubscriberDepth: cfg.SubscriberDepth,
	}
}

func toSSHConfig(cfg appconfig.Config) sshserver.Config {
	client := cfg.Client.Session()
	client.Nick = ""
	client.Backend = cfg.SSH.Backend
	if strings.TrimSpace(client.Backend) == "" {
		client.Backend = schema.DefaultBackend
	}
	return sshserver.Config{
		Addr:        cfg.SSH.Addr,
		HostKeyPath: cfg.SSH.HostKeyPath,
		Client:      client,
	}
}
