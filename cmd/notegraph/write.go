package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegraph/pkg/core"
	"github.com/aretw0/notegraph/pkg/git"
)

func newWriteCmd(o *rootOptions) *cobra.Command {
	var (
		id       string
		title    string
		content  string
		file     string
		message  string
		ctype    string
		scope    string
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Create or update a note",
		Long: `Create a note, or update the note with --id.
Content comes from --content, or from --file ("-" reads stdin).
Tags and links are derived from the content.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				data, err := readInput(cmd, file)
				if err != nil {
					return err
				}
				content = string(data)
			}

			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctype != "" {
				if message == "" {
					message = "save " + title
				}
				message = git.FormatMessage(ctype, scope, message, "")
			}
			if message != "" {
				ctx = context.WithValue(ctx, core.ChangeReasonKey, message)
			}

			n, err := svc.SaveNote(ctx, core.NoteInput{ID: id, Title: title, Content: content})
			if err != nil {
				return fmt.Errorf("save note: %w", err)
			}

			if jsonMode {
				return printJSON(cmd, n)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note '%s' saved (%s).\n", n.Title, n.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "ID of the note to update")
	cmd.Flags().StringVar(&title, "title", "", "Note title")
	cmd.Flags().StringVar(&content, "content", "", "Note content")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read content from a file (- for stdin)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Change reason (commit message)")
	cmd.Flags().StringVar(&ctype, "type", "", "Conventional commit type (feat, fix, docs, ...)")
	cmd.Flags().StringVar(&scope, "scope", "", "Conventional commit scope")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print the saved note as JSON")
	return cmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}
