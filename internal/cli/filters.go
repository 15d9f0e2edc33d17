package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/internal/report"
)

func newFiltersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Inspect the system and custom filters",
	}
	cmd.AddCommand(newFiltersListCmd(), newFiltersShowCmd(), newFiltersTreeCmd())
	return cmd
}

func newFiltersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := fromContext(cmd.Context()).library()
			if err != nil {
				return err
			}
			system, custom := lib.Lists()

			tw := newTable("")
			tw.AppendHeader(table.Row{"List", "Name", "Op", "Invert", "Rules", "Comment"})
			n := 0
			for _, l := range []*kin.FilterList{system, custom} {
				for _, f := range l.Filters() {
					invert := ""
					if f.Invert {
						invert = "yes"
					}
					tw.AppendRow(table.Row{l.Name, f.Name, f.Op, invert, len(f.Rules), f.Comment})
					n++
				}
			}
			tw.AppendFooter(table.Row{"", fmt.Sprintf("%d %s", n, report.Noun(n, "filter"))})
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}
}

func newFiltersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <filter>",
		Short: "Show a filter and its rules as a table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := fromContext(cmd.Context()).library()
			if err != nil {
				return err
			}
			f, _, err := lookup(lib, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), f.String())
			return nil
		},
	}
}

func newFiltersTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <filter>",
		Short: "Show a filter with the filters it refers to expanded",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := fromContext(cmd.Context()).library()
			if err != nil {
				return err
			}
			f, _, err := lookup(lib, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), f.Tree())
			return nil
		},
	}
}
