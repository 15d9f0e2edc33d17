package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/genealogy"
	"github.com/ezachrisen/kin/internal/metrics"
)

func TestObserver(t *testing.T) {
	is := is.New(t)
	m, err := metrics.New()
	is.NoErr(err)

	m.FilterApplied("women", 10, 4, 3*time.Millisecond)
	m.FilterApplied("women", 10, 5, time.Millisecond)
	m.LoopDetected("ancestors")

	want := `
# HELP kin_people_matched_total Number of people who passed a filter.
# TYPE kin_people_matched_total counter
kin_people_matched_total{filter="women"} 9
`
	is.NoErr(testutil.GatherAndCompare(m.Registry(), strings.NewReader(want), "kin_people_matched_total"))
	n, err := testutil.GatherAndCount(m.Registry(), "kin_apply_duration_seconds")
	is.NoErr(err)
	is.Equal(n, 1)

	body := scrape(t, m)
	is.True(strings.Contains(body, `kin_filters_applied_total{filter="women"} 2`))
	is.True(strings.Contains(body, `kin_people_tested_total{filter="women"} 20`))
	is.True(strings.Contains(body, `kin_relationship_loops_total{filter="ancestors"} 1`))
}

func TestEngineReports(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	m, err := metrics.New()
	is.NoErr(err)

	db := genealogy.NewMemDB()
	is.NoErr(db.AddPerson(&genealogy.Person{ID: "I1", Gender: genealogy.Male}))
	is.NoErr(db.AddPerson(&genealogy.Person{ID: "I2", Gender: genealogy.Female}))

	e := kin.NewEngine(nil, kin.WithMetrics(m))
	f := kin.NewFilter("men", kin.MustRule(kin.RuleIsMale))
	is.NoErr(e.Compile(f))
	_, err = e.Apply(ctx, db, f, db.People(ctx))
	is.NoErr(err)

	body := scrape(t, m)
	is.True(strings.Contains(body, `kin_people_tested_total{filter="men"} 2`))
	is.True(strings.Contains(body, `kin_people_matched_total{filter="men"} 1`))
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
