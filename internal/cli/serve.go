package cli

import (
	"github.com/spf13/cobra"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/internal/config"
	"github.com/ezachrisen/kin/internal/metrics"
	"github.com/ezachrisen/kin/internal/server"
)

func newServeCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the filter API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a := fromContext(ctx)

			db, err := a.loadTree(ctx)
			if err != nil {
				return err
			}
			m, err := metrics.New()
			if err != nil {
				return err
			}
			lib, err := a.library(kin.WithMetrics(m))
			if err != nil {
				return err
			}

			s := server.New(server.Config{
				Library:  lib,
				DB:       db,
				Metrics:  m.Handler(),
				Parallel: a.cfg.Parallel,
				Watch:    watch,
				Logger:   a.logger,
			})
			return s.Serve(ctx, a.cfg.Listen)
		},
	}
	cmd.Flags().String("listen", config.DefaultListen, "address to listen on")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the filters when the filter files change")
	return cmd
}
