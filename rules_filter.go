package kin

import (
	"context"
	"fmt"

	"github.com/ezachrisen/kin/genealogy"
)

// binding is what an engine hands to rules when a filter is compiled.
type binding struct {
	filters   FilterSource
	cache     *AncestorCache
	evaluator Evaluator
}

// binder is implemented by rules that depend on the engine.
type binder interface {
	bind(b *binding) error
}

// matchesFilter delegates to another filter looked up by name. A rule
// that has not been compiled by an engine, or that names an unknown
// filter, never matches.
type matchesFilter struct {
	base
	source FilterSource
}

func (r *matchesFilter) bind(b *binding) error {
	r.source = b.filters
	return nil
}

func (r *matchesFilter) Apply(ctx context.Context, db Database, p *genealogy.Person) (bool, error) {
	if r.source == nil {
		return false, nil
	}
	f, ok := r.source.Lookup(r.arg(0))
	if !ok {
		return false, nil
	}
	return f.Check(ctx, db, p)
}

// matchesExpression evaluates a compiled expression against the person.
type matchesExpression struct {
	base
	prg Program
}

func (r *matchesExpression) bind(b *binding) error {
	if b.evaluator == nil {
		return fmt.Errorf("%s %q: %w", r.name, r.arg(0), ErrNoEvaluator)
	}
	prg, err := b.evaluator.Compile(r.arg(0))
	if err != nil {
		return fmt.Errorf("compiling %q: %w", r.arg(0), err)
	}
	r.prg = prg
	return nil
}

func (r *matchesExpression) Apply(ctx context.Context, _ Database, p *genealogy.Person) (bool, error) {
	if r.prg == nil {
		return false, fmt.Errorf("%s %q: %w", r.name, r.arg(0), ErrNotCompiled)
	}
	return r.prg.Eval(ctx, p)
}

func (r *hasCommonAncestor) bind(b *binding) error {
	r.cache = b.cache
	return nil
}
