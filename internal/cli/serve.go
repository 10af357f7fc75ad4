package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orthoroute/pkg/api"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		Long: `Serve the routing API and the diagram API.

Cache and storage backends come from the [cache] and [storage] sections of the
config file. The server shuts down gracefully on SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if addr == "" {
				addr = c.config.Server.Addr
			}

			ch, err := c.newCache(ctx, false)
			if err != nil {
				return err
			}
			defer ch.Close()

			dir, err := dataDir()
			if err != nil {
				return fmt.Errorf("get data dir: %w", err)
			}
			store, err := c.config.OpenStore(ctx, dir)
			if err != nil {
				return fmt.Errorf("open %s storage: %w", c.config.Storage.Backend, err)
			}
			defer store.Close()

			logger.Info("starting server",
				"cache", c.config.Cache.Backend,
				"storage", c.config.Storage.Backend)

			srv := api.New(api.Options{
				Layouter: c.config.Layouter(),
				Cache:    ch,
				Store:    store,
				Outlines: c.config.Outlines(),
				Logger:   logger,
			})
			return srv.Run(ctx, addr, c.config.Server.ShutdownTimeout.Duration)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
