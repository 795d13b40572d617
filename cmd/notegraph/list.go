package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/aretw0/notegraph/pkg/core"
)

func newListCmd(o *rootOptions) *cobra.Command {
	var (
		jsonMode bool
		tag      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, optionally filtered by tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}

			notes, err := svc.ListNotes(cmd.Context(), core.ListOptions{Tag: strings.TrimPrefix(tag, "#")})
			if err != nil {
				return fmt.Errorf("list notes: %w", err)
			}

			if jsonMode {
				if notes == nil {
					notes = []core.Note{}
				}
				return printJSON(cmd, notes)
			}
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes found.")
				return nil
			}

			t := newTable(cmd, "ID", "Title", "Tags", "Updated")
			for _, n := range notes {
				t.AppendRow(table.Row{n.ID, n.Title, joinTags(n.Tags), n.Updated.Local().Format("2006-01-02 15:04")})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output in JSON format")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Only notes carrying this tag (with or without #)")
	return cmd
}

// newTable returns a table writer mirrored to the command output with
// highlighted headers.
func newTable(cmd *cobra.Command, headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleDouble)
	t.Style().Options.SeparateRows = false

	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = text.FgGreen.Sprintf("%s", h)
	}
	t.AppendHeader(row)
	return t
}

func joinTags(tags []string) string {
	prefixed := make([]string, len(tags))
	for i, tag := range tags {
		prefixed[i] = "#" + tag
	}
	return strings.Join(prefixed, " ")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
