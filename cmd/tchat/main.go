package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("tchat command failed")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts connectOptions
	root := &cobra.Command{
		Use:           "tchat",
		Short:         "Terminal chat client for a WebSocket broadcast relay",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(cmd, opts)
		},
	}
	root.Flags().StringVarP(&opts.nick, "nick", "n", "", "nickname shown to other users")
	root.Flags().StringVarP(&opts.backend, "backend", "b", "", "relay address (host:port or ws:// URL)")
	root.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	root.Flags().StringVar(&opts.theme, "theme", "", "color theme")

	root.AddCommand(newServeCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}
