package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/aretw0/notegraph/pkg/core"
)

func newBacklinksCmd(o *rootOptions) *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:   "backlinks [id]",
		Short: "List the notes linking to a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}

			notes, err := svc.Backlinks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonMode {
				if notes == nil {
					notes = []core.Note{}
				}
				return printJSON(cmd, notes)
			}
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backlinks.")
				return nil
			}
			t := newTable(cmd, "ID", "Title")
			for _, n := range notes {
				t.AppendRow(table.Row{n.ID, n.Title})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output in JSON format")
	return cmd
}

func newLinksCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "links [id]",
		Short: "List the titles a note links to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}
			view, err := svc.View(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, title := range view.Links {
				fmt.Fprintln(cmd.OutOrStdout(), title)
			}
			return nil
		},
	}
}

func newTagsCmd(o *rootOptions) *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show the tag cloud",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}
			tags := svc.Tags(cmd.Context())
			if jsonMode {
				if tags == nil {
					tags = []core.TagCount{}
				}
				return printJSON(cmd, tags)
			}
			t := newTable(cmd, "Tag", "Notes")
			for _, tc := range tags {
				t.AppendRow(table.Row{"#" + tc.Tag, tc.Count})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output in JSON format")
	return cmd
}

func newOpenCmd(o *rootOptions) *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "open [title]",
		Short: "Follow a [[link]] by title",
		Long: `Resolve a link title to its note and print the note.
When no note carries the title, --create makes an empty one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			act, err := svc.ActivateLink(ctx, args[0])
			if err != nil {
				return err
			}
			if act.Note != nil {
				fmt.Fprintf(out, "%s (%s)\n\n%s\n", act.Note.Title, act.Note.ID, act.Note.Content)
				return nil
			}
			if !create {
				fmt.Fprintf(out, "No note titled '%s'. Use --create to make one.\n", act.Title)
				return nil
			}
			n, err := svc.SaveNote(ctx, core.NoteInput{Title: act.Title})
			if err != nil {
				return fmt.Errorf("create note: %w", err)
			}
			fmt.Fprintf(out, "Note '%s' created (%s).\n", n.Title, n.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "Create the note when the title is unknown")
	return cmd
}

func newTitlesCmd(o *rootOptions) *cobra.Command {
	var (
		duplicates bool
		jsonMode   bool
	)

	cmd := &cobra.Command{
		Use:   "titles",
		Short: "List note titles",
		Long: `List every note title. With --duplicates, only the titles carried by
several notes are shown; a [[link]] to them is ambiguous.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if duplicates {
				dups := svc.DuplicateTitles(ctx)
				if jsonMode {
					return printJSON(cmd, dups)
				}
				if len(dups) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No duplicate titles.")
					return nil
				}
				titles := make([]string, 0, len(dups))
				for title := range dups {
					titles = append(titles, title)
				}
				sort.Strings(titles)

				t := newTable(cmd, "Title", "Notes")
				for _, title := range titles {
					t.AppendRow(table.Row{title, strings.Join(dups[title], ", ")})
				}
				t.Render()
				return nil
			}

			notes, err := svc.ListNotes(ctx, core.ListOptions{})
			if err != nil {
				return err
			}
			if jsonMode {
				titles := make([]string, 0, len(notes))
				for _, n := range notes {
					titles = append(titles, n.Title)
				}
				return printJSON(cmd, titles)
			}
			for _, n := range notes {
				fmt.Fprintln(cmd.OutOrStdout(), n.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&duplicates, "duplicates", false, "Only titles shared by several notes")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output in JSON format")
	return cmd
}
