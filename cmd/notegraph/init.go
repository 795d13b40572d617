package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegraph"
)

func newInitCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a vault",
		Long: `Initialize a vault in the current directory (or --path).
For the fs adapter this creates the .notegraph directory and, unless
--gitless, a git repository. For sqlite it creates the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := o.openService(cmd, notegraph.WithAutoInit(true))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Initialized empty notegraph vault in", cfg.Path)
			return nil
		},
	}
}
