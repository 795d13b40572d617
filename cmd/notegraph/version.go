package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegraph"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notegraph version %s\n", notegraph.Version)
		},
	}
}
