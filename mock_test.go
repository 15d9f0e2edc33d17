package kin_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/genealogy"
)

// -------------------------------------------------- MOCK EVALUATOR
// mockEvaluator is used for testing
// It only knows two expressions, `true` and `false`, and counts how
// many expressions were compiled.
type mockEvaluator struct {
	compiled atomic.Int32
	// Introduce an artificial delay in evaluating the expression.
	// Used for testing the engine's context cancelation functionality.
	evalDelay time.Duration
}

type program struct {
	result bool
	delay  time.Duration
}

func newMockEvaluator() *mockEvaluator {
	return &mockEvaluator{}
}

func (m *mockEvaluator) Compile(expr string) (kin.Program, error) {
	m.compiled.Add(1)
	switch expr {
	case "true":
		return program{result: true, delay: m.evalDelay}, nil
	case "false":
		return program{result: false, delay: m.evalDelay}, nil
	}
	return nil, fmt.Errorf("mock evaluator cannot compile %q", expr)
}

func (p program) Eval(ctx context.Context, _ *genealogy.Person) (bool, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return p.result, nil
}

// -------------------------------------------------- MOCK RULE
// mockRule returns a fixed result (or error) and counts how often it was applied.
type mockRule struct {
	result bool
	err    error
	calls  atomic.Int32
}

func yes() *mockRule { return &mockRule{result: true} }
func no() *mockRule  { return &mockRule{result: false} }

func (r *mockRule) Name() string     { return "mock" }
func (r *mockRule) Labels() []string { return nil }
func (r *mockRule) Values() []string { return nil }

func (r *mockRule) Apply(context.Context, kin.Database, *genealogy.Person) (bool, error) {
	r.calls.Add(1)
	return r.result, r.err
}

// -------------------------------------------------- COUNTING DATABASE
// countingDB records every lookup made through it.
type countingDB struct {
	db      kin.Database
	lookups atomic.Int64
}

func (c *countingDB) Person(ctx context.Context, id string) (*genealogy.Person, error) {
	c.lookups.Add(1)
	return c.db.Person(ctx, id)
}

func (c *countingDB) Family(ctx context.Context, id string) (*genealogy.Family, error) {
	c.lookups.Add(1)
	return c.db.Family(ctx, id)
}
