package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReadCmd(o *rootOptions) *cobra.Command {
	var (
		jsonMode bool
		htmlMode bool
		byTitle  bool
	)

	cmd := &cobra.Command{
		Use:   "read [id]",
		Short: "Read a note",
		Long: `Read a note by its ID (or title with --title).
Prints the raw content by default, the rendered HTML with --html, or the
note with its rendering and backlinks as JSON with --json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			id := args[0]
			if byTitle {
				n, err := svc.FindByTitle(ctx, args[0])
				if err != nil {
					return err
				}
				id = n.ID
			}

			view, err := svc.View(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonMode:
				return printJSON(cmd, view)
			case htmlMode:
				fmt.Fprintln(out, view.HTML)
			default:
				fmt.Fprint(out, view.Note.Content)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&htmlMode, "html", false, "Output the rendered HTML")
	cmd.Flags().BoolVar(&byTitle, "title", false, "Treat the argument as a title")
	cmd.MarkFlagsMutuallyExclusive("json", "html")
	return cmd
}

