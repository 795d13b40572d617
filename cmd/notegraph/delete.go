package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegraph/pkg/core"
)

func newDeleteCmd(o *rootOptions) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if message == "" {
				message = "delete " + args[0]
			}
			ctx = context.WithValue(ctx, core.ChangeReasonKey, message)

			if err := svc.DeleteNote(ctx, args[0]); err != nil {
				return fmt.Errorf("delete note: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note '%s' deleted.\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Change reason (commit message)")
	return cmd
}
