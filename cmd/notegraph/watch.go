package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegraph/pkg/adapters/lifecycle"
	"github.com/aretw0/notegraph/pkg/core"
)

func newWatchCmd(o *rootOptions) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print changes made to the vault by other processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := o.openService(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			events, err := svc.Watch(ctx)
			if err != nil {
				return err
			}

			var opts []lifecycle.Option
			for _, t := range types {
				opts = append(opts, lifecycle.WithTypes(core.EventType(strings.ToUpper(t))))
			}
			src := lifecycle.NewSource(events, opts...)
			if err := src.Start(ctx); err != nil {
				return err
			}

			o.log().Info("watching vault", "path", cfg.Path)
			for e := range src.Events() {
				fmt.Fprintln(cmd.OutOrStdout(), e.String())
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&types, "type", nil, "Only report these changes: create, modify, delete")
	return cmd
}
