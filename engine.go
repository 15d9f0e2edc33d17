package kin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ezachrisen/kin/genealogy"
)

// Engine compiles filters and applies them to people.
type Engine struct {
	// The Evaluator that compiles "Matches the expression" rules. May be nil.
	evaluator Evaluator

	// Options used by the engine during compilation and evaluation
	opts EngineOptions
}

// Observer receives a report of every filter application.
type Observer interface {
	FilterApplied(filter string, tested, matched int, elapsed time.Duration)
	LoopDetected(filter string)
}

// See the functional definitions below for the meaning.
type EngineOptions struct {
	Logger   *slog.Logger
	Filters  FilterSource
	Cache    *AncestorCache
	Observer Observer
}

type EngineOption func(f *EngineOptions)

// Given an array of EngineOption functions, apply their effect
// on the EngineOptions struct.
func applyEngineOptions(o *EngineOptions, opts ...EngineOption) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithLogger sets the logger used by the engine.
// Default: discard all logs
func WithLogger(l *slog.Logger) EngineOption {
	return func(f *EngineOptions) {
		f.Logger = l
	}
}

// WithFilters sets where "Matches the filter named" rules look up the
// filters they delegate to.
func WithFilters(s FilterSource) EngineOption {
	return func(f *EngineOptions) {
		f.Filters = s
	}
}

// WithAncestorCache shares ancestor sets between the filters compiled by
// the engine.
func WithAncestorCache(c *AncestorCache) EngineOption {
	return func(f *EngineOptions) {
		f.Cache = c
	}
}

// WithMetrics reports every filter application to o.
func WithMetrics(o Observer) EngineOption {
	return func(f *EngineOptions) {
		f.Observer = o
	}
}

// NewEngine initializes a new engine. The evaluator is only needed for
// filters that use expression rules and may be nil.
func NewEngine(evaluator Evaluator, opts ...EngineOption) *Engine {
	engine := Engine{
		evaluator: evaluator,
	}
	applyEngineOptions(&engine.opts, opts...)
	if engine.opts.Logger == nil {
		engine.opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &engine
}

// Compile prepares the filter for use: it checks the argument count of
// every rule, compiles expressions, and binds filter references to the
// engine's filter source.
func (e *Engine) Compile(f *Filter) error {
	b := &binding{
		filters:   e.opts.Filters,
		cache:     e.opts.Cache,
		evaluator: e.evaluator,
	}
	for i, r := range f.Rules {
		if len(r.Values()) != len(r.Labels()) {
			return fmt.Errorf("filter %s, rule %d (%s): %w", f.Name, i+1, r.Name(), ErrArgCount)
		}
		if bd, ok := r.(binder); ok {
			if err := bd.bind(b); err != nil {
				return fmt.Errorf("filter %s, rule %d: %w", f.Name, i+1, err)
			}
		}
	}
	return nil
}

// CompileList compiles every filter in the list.
func (e *Engine) CompileList(l *FilterList) error {
	for _, f := range l.Filters() {
		if err := e.Compile(f); err != nil {
			return err
		}
	}
	return nil
}

// ApplyOptions control a call to Apply.
type ApplyOptions struct {
	Workers           int
	ReturnNonMatching bool
}

type ApplyOption func(f *ApplyOptions)

// Parallel checks people on up to n goroutines. The result is the same as
// for a sequential apply.
// Default: 1
func Parallel(n int) ApplyOption {
	return func(f *ApplyOptions) {
		f.Workers = n
	}
}

// ReturnNonMatching lists the people who did not pass in Result.Rejected.
// Default: off
func ReturnNonMatching(b bool) ApplyOption {
	return func(f *ApplyOptions) {
		f.ReturnNonMatching = b
	}
}

// Apply checks every person against the filter and returns those who
// pass, in input order.
func (e *Engine) Apply(ctx context.Context, db Database, f *Filter, people []*genealogy.Person, opts ...ApplyOption) (*Result, error) {
	o := ApplyOptions{Workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	var (
		pass []bool
		err  error
	)
	if o.Workers > 1 && len(people) > 1 {
		pass, err = e.checkParallel(ctx, db, f, people, o.Workers)
	} else {
		pass, err = e.check(ctx, db, f, people)
	}
	if err != nil {
		var le *LoopError
		if errors.As(err, &le) {
			e.opts.Logger.Warn("relationship loop", "filter", f.Name, "person1", le.Person1ID, "person2", le.Person2ID)
			if e.opts.Observer != nil {
				e.opts.Observer.LoopDetected(f.Name)
			}
		}
		return nil, fmt.Errorf("applying filter %s: %w", f.Name, err)
	}

	res := &Result{
		Filter: f,
		Tested: len(people),
	}
	for i, p := range people {
		switch {
		case pass[i]:
			res.Matched = append(res.Matched, p)
		case o.ReturnNonMatching:
			res.Rejected = append(res.Rejected, p)
		}
	}
	res.Elapsed = time.Since(start)

	e.opts.Logger.Debug("applied filter",
		"filter", f.Name,
		"tested", res.Tested,
		"matched", len(res.Matched),
		"workers", o.Workers,
		"elapsed", res.Elapsed)
	if e.opts.Observer != nil {
		e.opts.Observer.FilterApplied(f.Name, res.Tested, len(res.Matched), res.Elapsed)
	}
	return res, nil
}

func (e *Engine) check(ctx context.Context, db Database, f *Filter, people []*genealogy.Person) ([]bool, error) {
	pass := make([]bool, len(people))
	for i, p := range people {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := f.Check(ctx, db, p)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", p.ID, err)
		}
		pass[i] = ok
	}
	return pass, nil
}

func (e *Engine) checkParallel(ctx context.Context, db Database, f *Filter, people []*genealogy.Person, workers int) ([]bool, error) {
	pass := make([]bool, len(people))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range people {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := f.Check(gctx, db, p)
			if err != nil {
				return fmt.Errorf("checking %s: %w", p.ID, err)
			}
			pass[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pass, nil
}
