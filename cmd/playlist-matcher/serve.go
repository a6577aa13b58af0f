package main

import (
	"github.com/spf13/cobra"

	"github.com/justestif/go-playlist-matcher/internal/logging"
	"github.com/justestif/go-playlist-matcher/internal/web"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			database, err := openDB(ctx, a.cfg)
			if err != nil {
				return err
			}

			var health web.Pinger
			if database != nil {
				defer database.Close()
				health = database
			} else {
				logging.Warn().Msg("no database configured, stored playlist endpoints are disabled")
			}

			svc, err := newRecommender(a.cfg, database)
			if err != nil {
				return err
			}

			cfg := web.ServerConfig{
				Addr:            a.cfg.Server.Addr,
				RequestTimeout:  a.cfg.Server.RequestTimeout,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
				MaxSongs:        a.cfg.Server.MaxSongs,
			}
			if addr != "" {
				cfg.Addr = addr
			}

			return web.NewServer(cfg, svc, health).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
