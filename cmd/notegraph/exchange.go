package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notegraph/pkg/core"
	"github.com/aretw0/notegraph/pkg/markdown"
)

func newExportCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Export notes as Markdown files with YAML frontmatter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "export"
			if len(args) == 1 {
				dir = args[0]
			}

			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}
			notes, err := svc.ListNotes(cmd.Context(), core.ListOptions{})
			if err != nil {
				return err
			}

			files, err := markdown.Export(notes, dir)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes to %s.\n", len(files), dir)
			return nil
		},
	}
}

func newImportCmd(o *rootOptions) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "import [dir]",
		Short: "Import Markdown files into the vault",
		Long: `Import every file matching --pattern under dir.
Files with an id in their frontmatter replace the note with that id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := markdown.Import(args[0], pattern)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			svc, _, err := o.openService(cmd)
			if err != nil {
				return err
			}
			n, err := svc.Import(cmd.Context(), notes)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes.\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", markdown.DefaultPattern, "Glob of files to import")
	return cmd
}
