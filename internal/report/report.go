// Package report renders the result of applying a filter as a standalone
// HTML page.
package report

import (
	_ "embed"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gobuffalo/plush"
	"github.com/markbates/inflect"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/genealogy"
)

//go:embed templates/report.plush.html
var page string

// Options control the rendered page.
type Options struct {
	// Title of the page
	Title string

	// Generated is the time shown as the generation time. Default: now
	Generated time.Time
}

type filterView struct {
	Name    string
	Comment string
}

type personView struct {
	ID    string
	Name  string
	Birth string
	Death string
}

// Render writes the report for res to w.
func Render(w io.Writer, res *kin.Result, o Options) error {
	if o.Title == "" {
		o.Title = "Filter report"
	}
	if o.Generated.IsZero() {
		o.Generated = time.Now()
	}

	people := make([]personView, 0, len(res.Matched))
	for _, p := range res.Matched {
		people = append(people, personView{
			ID:    p.ID,
			Name:  p.DisplayName(),
			Birth: vital(p.Birth),
			Death: vital(p.Death),
		})
	}

	ctx := plush.NewContext()
	ctx.Set("title", o.Title)
	ctx.Set("filter", filterView{Name: res.Filter.Name, Comment: res.Filter.Comment})
	ctx.Set("summary", Summary(res))
	ctx.Set("tree", res.Filter.Tree())
	ctx.Set("matchedHeading", inflect.Titleize(inflect.Pluralize("matching person")))
	ctx.Set("people", people)
	ctx.Set("generated", o.Generated.Format("2006-01-02 15:04"))

	out, err := plush.Render(page, ctx)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// Summary describes the counts of a result in words, such as
// "3 people matched out of 1,204 tested in 2ms".
func Summary(res *kin.Result) string {
	return fmt.Sprintf("%s %s matched out of %s tested in %s",
		humanize.Comma(int64(len(res.Matched))),
		Noun(len(res.Matched), "person"),
		humanize.Comma(int64(res.Tested)),
		res.Elapsed.Round(time.Millisecond))
}

// Noun returns word, pluralized unless n is one.
func Noun(n int, word string) string {
	if n == 1 {
		return word
	}
	return inflect.Pluralize(word)
}

func vital(e *genealogy.Event) string {
	if e == nil {
		return ""
	}
	if e.Place == "" {
		return e.Date.String()
	}
	if e.Date.IsEmpty() {
		return e.Place
	}
	return e.Date.String() + ", " + e.Place
}
