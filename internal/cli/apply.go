package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/genealogy"
	"github.com/ezachrisen/kin/internal/report"
)

// applyNamed loads the tree and the filters, then applies the named filter
// to the people with the given ids, or to everyone.
func applyNamed(ctx context.Context, name string, ids []string, rejected bool) (*kin.Result, error) {
	a := fromContext(ctx)
	db, err := a.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	lib, err := a.library()
	if err != nil {
		return nil, err
	}
	f, e, err := lookup(lib, name)
	if err != nil {
		return nil, err
	}

	people := db.People(ctx)
	if len(ids) > 0 {
		people = make([]*genealogy.Person, 0, len(ids))
		for _, id := range ids {
			p, err := db.Person(ctx, id)
			if err != nil {
				return nil, err
			}
			people = append(people, p)
		}
	}
	return e.Apply(ctx, db, f, people, kin.Parallel(a.cfg.Parallel), kin.ReturnNonMatching(rejected))
}

func newApplyCmd() *cobra.Command {
	var (
		ids      []string
		format   string
		rejected bool
	)
	cmd := &cobra.Command{
		Use:   "apply <filter>",
		Short: "Apply a filter to the people in the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "ids" {
				return fmt.Errorf("format must be table or ids, not %q", format)
			}
			res, err := applyNamed(cmd.Context(), args[0], ids, rejected && format == "table")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "ids":
				for _, p := range res.Matched {
					fmt.Fprintln(out, p.ID)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), report.Summary(res))
			default:
				fmt.Fprintln(out, res.String())
				fmt.Fprintln(out, report.Summary(res))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "only check the people with these ids")
	cmd.Flags().StringVar(&format, "format", "table", "output format (table|ids)")
	cmd.Flags().BoolVar(&rejected, "rejected", false, "also list the people who did not pass")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "ids"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newReportCmd() *cobra.Command {
	var (
		output string
		ids    []string
	)
	cmd := &cobra.Command{
		Use:   "report <filter>",
		Short: "Write an HTML page listing the people who pass a filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res, err := applyNamed(ctx, args[0], ids, false)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating report: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := report.Render(w, res, report.Options{Title: fromContext(ctx).cfg.ReportTitle}); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s: %s\n", output, report.Summary(res))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default: standard output)")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "only check the people with these ids")
	return cmd
}
