package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/genealogy"
	"github.com/ezachrisen/kin/internal/report"
)

func result() *kin.Result {
	birth := genealogy.Event{Type: genealogy.EventBirth, Date: genealogy.ParseDate("1834"), Place: "Boston, MA"}
	return &kin.Result{
		Filter: &kin.Filter{
			Name:    "Bostonians",
			Comment: "born in Boston",
			Rules:   []kin.Rule{kin.MustRule(kin.RuleHasBirth, "", "Boston", "")},
		},
		Tested: 1234,
		Matched: []*genealogy.Person{
			{ID: "I1", PrimaryName: genealogy.NewName("Eliza", "Smith"), Birth: &birth},
			{ID: "I2", PrimaryName: genealogy.NewName("Tom", "Smith & <Sons>")},
		},
		Elapsed: 2 * time.Millisecond,
	}
}

func TestSummary(t *testing.T) {
	is := is.New(t)
	res := result()
	is.Equal(report.Summary(res), "2 people matched out of 1,234 tested in 2ms")

	res.Matched = res.Matched[:1]
	res.Tested = 1
	is.Equal(report.Summary(res), "1 person matched out of 1 tested in 2ms")

	is.Equal(report.Noun(0, "family"), "families")
}

func TestRender(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	err := report.Render(&buf, result(), report.Options{
		Title:     "Smith family",
		Generated: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	})
	is.NoErr(err)

	out := buf.String()
	for _, want := range []string{
		"<title>Smith family</title>",
		"<h2>Bostonians</h2>",
		"born in Boston",
		"2 people matched out of 1,234 tested",
		"Has the birth",
		"<td>I1</td>",
		"<td>Smith, Eliza</td>",
		"<td>1834, Boston, MA</td>",
		"&amp; &lt;Sons&gt;",
		"Generated 2024-03-01 10:30.",
	} {
		is.True(strings.Contains(out, want))
	}
	is.True(!strings.Contains(out, "<Sons>"))
}
