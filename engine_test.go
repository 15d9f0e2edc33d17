package kin_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/genealogy"
)

type observer struct {
	mu      sync.Mutex
	applied []string
	matched int
	loops   int
}

func (o *observer) FilterApplied(filter string, tested, matched int, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applied = append(o.applied, filter)
	o.matched += matched
}

func (o *observer) LoopDetected(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loops++
}

// makeWideTree builds n generations of single-child families, each with
// an unrelated spouse, so that about half of the people descend from P0.
func makeWideTree(t *testing.T, n int) *genealogy.MemDB {
	t.Helper()
	db := genealogy.NewMemDB()
	for i := range n {
		g := genealogy.Male
		if i%2 == 1 {
			g = genealogy.Female
		}
		if err := db.AddPerson(person(fmt.Sprintf("P%03d", i), "Child", "Line", g, fmt.Sprintf("%d", 1700+i), "")); err != nil {
			t.Fatal(err)
		}
		if err := db.AddPerson(person(fmt.Sprintf("S%03d", i), "Spouse", "Other", genealogy.Unknown, "", "")); err != nil {
			t.Fatal(err)
		}
	}
	for i := range n - 1 {
		f := &genealogy.Family{
			ID:       fmt.Sprintf("F%03d", i),
			FatherID: fmt.Sprintf("P%03d", i),
			MotherID: fmt.Sprintf("S%03d", i),
			ChildIDs: []string{fmt.Sprintf("P%03d", i+1)},
		}
		if err := db.AddFamily(f); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.LinkAll(); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestParallelMatchesSequential(t *testing.T) {
	is := is.New(t)
	db := makeWideTree(t, 200)
	ctx := context.Background()
	e := kin.NewEngine(newMockEvaluator())

	build := func() *kin.Filter {
		return &kin.Filter{
			Name: "descendants or 1750s",
			Op:   kin.Or,
			Rules: []kin.Rule{
				kin.MustRule(kin.RuleIsDescendantOf, "P100"),
				kin.MustRule(kin.RuleHasBirth, "after 1749", "", ""),
				kin.MustRule(kin.RuleMatchesExpression, "false"),
			},
		}
	}

	seq := build()
	is.NoErr(e.Compile(seq))
	want, err := e.Apply(ctx, db, seq, db.People(ctx))
	is.NoErr(err)
	is.Equal(len(want.Matched), 150) // P050 through P199

	for _, workers := range []int{2, 8, 64} {
		par := build()
		is.NoErr(e.Compile(par))
		got, err := e.Apply(ctx, db, par, db.People(ctx), kin.Parallel(workers))
		is.NoErr(err)
		is.Equal(got.Matched, want.Matched)
	}
}

func TestApplyCanceled(t *testing.T) {
	is := is.New(t)
	db := makeWideTree(t, 20)

	ev := newMockEvaluator()
	ev.evalDelay = 20 * time.Millisecond
	e := kin.NewEngine(ev)
	f := kin.NewFilter("slow", kin.MustRule(kin.RuleMatchesExpression, "true"))
	is.NoErr(e.Compile(f))

	for _, workers := range []int{1, 4} {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		_, err := e.Apply(ctx, db, f, db.People(context.Background()), kin.Parallel(workers))
		cancel()
		is.True(errors.Is(err, context.DeadlineExceeded))
	}
}

func TestReturnNonMatching(t *testing.T) {
	is := is.New(t)
	db := makeTree(t)
	ctx := context.Background()
	e := kin.NewEngine(nil)

	f := kin.NewFilter("men", kin.MustRule(kin.RuleIsMale))
	is.NoErr(e.Compile(f))

	res, err := e.Apply(ctx, db, f, db.People(ctx))
	is.NoErr(err)
	is.Equal(len(res.Rejected), 0)

	res, err = e.Apply(ctx, db, f, db.People(ctx), kin.ReturnNonMatching(true))
	is.NoErr(err)
	is.Equal(res.Tested, 8)
	is.Equal(len(res.Matched), 4)
	is.Equal(len(res.Rejected), 4)
	is.Equal(res.Rejected[0].ID, "I2")
}

func TestCompileChecksArguments(t *testing.T) {
	is := is.New(t)
	e := kin.NewEngine(newMockEvaluator())

	bad := &mockRule{}
	f := kin.NewFilter("bad", badArity{bad})
	is.True(errors.Is(e.Compile(f), kin.ErrArgCount))

	f = kin.NewFilter("expr", kin.MustRule(kin.RuleMatchesExpression, "maybe"))
	is.True(e.Compile(f) != nil)

	f = kin.NewFilter("uncompiled", kin.MustRule(kin.RuleMatchesExpression, "true"))
	_, err := f.Check(context.Background(), nil, person("I1", "A", "B", genealogy.Male, "", ""))
	is.True(errors.Is(err, kin.ErrNotCompiled))
}

// badArity reports one label but no values.
type badArity struct{ *mockRule }

func (badArity) Labels() []string { return []string{"ID:"} }

func TestObserverAndLogging(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := &observer{}
	e := kin.NewEngine(nil, kin.WithLogger(logger), kin.WithMetrics(obs))

	db := makeTree(t)
	f := kin.NewFilter("women", kin.MustRule(kin.RuleIsFemale))
	is.NoErr(e.Compile(f))
	_, err := e.Apply(ctx, db, f, db.People(ctx))
	is.NoErr(err)
	is.Equal(obs.applied, []string{"women"})
	is.Equal(obs.matched, 4)
	is.True(strings.Contains(buf.String(), "applied filter"))

	loop := makeLoop(t)
	f = kin.NewFilter("loop", kin.MustRule(kin.RuleIsDescendantOf, "A"))
	is.NoErr(e.Compile(f))
	_, err = e.Apply(ctx, loop, f, loop.People(ctx), kin.Parallel(4))
	is.True(errors.Is(err, kin.ErrLoop))
	is.Equal(obs.loops, 1)
	is.Equal(obs.applied, []string{"women"})
	is.True(strings.Contains(buf.String(), "relationship loop"))
}

func TestResultString(t *testing.T) {
	is := is.New(t)
	db := makeTree(t)
	ctx := context.Background()
	e := kin.NewEngine(nil)

	f := kin.NewFilter("died in Salem", kin.MustRule(kin.RuleHasDeath, "", "Salem", ""))
	is.NoErr(e.Compile(f))
	res, err := e.Apply(ctx, db, f, db.People(ctx))
	is.NoErr(err)

	s := res.String()
	is.True(strings.Contains(s, "died in Salem"))
	is.True(strings.Contains(s, "Smith, Alice"))
	is.True(strings.Contains(s, "1860-06"))
	is.True(strings.Contains(s, "1 of 8 matched"))
}
