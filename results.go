package kin

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ezachrisen/kin/genealogy"
)

// Result of applying a filter to a list of people.
type Result struct {
	// The Filter that was applied
	Filter *Filter

	// Number of people checked
	Tested int

	// People who passed the filter, in input order
	Matched []*genealogy.Person

	// People who did not pass; only filled in with the ReturnNonMatching option
	Rejected []*genealogy.Person

	// Time taken to check every person
	Elapsed time.Duration
}

// String produces a table of the people checked and whether they passed.
func (u *Result) String() string {
	tw := table.NewWriter()
	tw.SetTitle(fmt.Sprintf("\nKIN RESULT: %s\n", u.Filter.Name))
	tw.AppendHeader(table.Row{"\nID", "\nName", "\nBirth", "\nDeath", "Pass/\nFail"})

	for _, p := range u.Matched {
		tw.AppendRow(personRow(p, true))
	}
	for _, p := range u.Rejected {
		tw.AppendRow(personRow(p, false))
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d of %d matched", len(u.Matched), u.Tested), "", "", u.Elapsed.Round(time.Microsecond)})

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

func personRow(p *genealogy.Person, pass bool) table.Row {
	return table.Row{
		p.ID,
		p.DisplayName(),
		eventDate(p.Birth),
		eventDate(p.Death),
		boolString(pass),
	}
}

func eventDate(e *genealogy.Event) string {
	if e == nil {
		return ""
	}
	return e.Date.String()
}

func boolString(b bool) string {
	switch b {
	case true:
		return "PASS"
	default:
		return "FAIL"
	}
}
