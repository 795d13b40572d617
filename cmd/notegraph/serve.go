package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegraph/internal/server"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the notes over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := o.openService(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}

			ln, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Listen, err)
			}

			handler := server.NewRouter(svc, server.Options{
				CORSOrigins: cfg.CORSOrigins,
				Logger:      o.log(),
			})
			return server.Serve(cmd.Context(), ln, handler, o.log())
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (default from config)")
	return cmd
}
