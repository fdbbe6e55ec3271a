package commands

import (
	"github.com/spf13/cobra"

	"github.com/tesoro-dev/tesoro/internal/api"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			if addr == "" {
				addr = e.cfg.Server.Addr
			}
			app := api.New(e.svc, e.log, e.owner)

			errc := make(chan error, 1)
			go func() { errc <- app.Listen(addr) }()
			e.log.Info().Str("addr", addr).Msg("listening")

			select {
			case err := <-errc:
				return err
			case <-e.ctx.Done():
				e.log.Info().Msg("shutting down")
				return app.Shutdown()
			}
		}),
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from the config)")

	return cmd
}
