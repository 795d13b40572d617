package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegraph/pkg/core"
)

func newSyncCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull and push the vault repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Sync(cmd.Context()); err != nil {
				if errors.Is(err, core.ErrUnsupported) {
					return fmt.Errorf("this vault is not versioned: %w", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Vault synchronized.")
			return nil
		},
	}
}
