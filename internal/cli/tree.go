package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ezachrisen/kin/genealogy"
	"github.com/ezachrisen/kin/internal/report"
	"github.com/ezachrisen/kin/internal/treefile"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <tree.yaml>",
		Short: "Replace the tree in the database with the people and families in a tree file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := fromContext(ctx)

			db, err := treefile.Load(args[0])
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.SaveTree(ctx, db); err != nil {
				return err
			}
			people, families, err := s.Counts(ctx)
			if err != nil {
				return err
			}
			a.logger.Info("tree imported", "file", args[0], "database", s.Path())
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s %s and %s %s into %s\n",
				humanize.Comma(int64(people)), report.Noun(people, "person"),
				humanize.Comma(int64(families)), report.Noun(families, "family"),
				s.Path())
			return nil
		},
	}
}

func newPeopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "people",
		Short: "List the people in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := fromContext(ctx).loadTree(ctx)
			if err != nil {
				return err
			}

			people := db.People(ctx)
			tw := newTable("")
			tw.AppendHeader(table.Row{"ID", "Name", "Gender", "Birth", "Death"})
			for _, p := range people {
				tw.AppendRow(table.Row{p.ID, p.DisplayName(), p.Gender, vital(p.Birth), vital(p.Death)})
			}
			tw.AppendFooter(table.Row{"", fmt.Sprintf("%s %s", humanize.Comma(int64(len(people))), report.Noun(len(people), "person"))})
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}
}

func vital(e *genealogy.Event) string {
	if e == nil {
		return ""
	}
	return e.Date.String()
}
