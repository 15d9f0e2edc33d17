package kin

import (
	"context"

	"github.com/ezachrisen/kin/genealogy"
)

// Evaluator is the interface implemented by types that compile the
// expressions of "Matches the expression" rules. The cel package provides
// an implementation backed by Google's Common Expression Language.
type Evaluator interface {
	// Compile checks the expression and returns a program ready to be
	// evaluated against people. Expressions must produce a boolean.
	Compile(expr string) (Program, error)
}

// Program is a compiled expression.
type Program interface {
	// Eval reports whether the expression holds for p.
	Eval(ctx context.Context, p *genealogy.Person) (bool, error)
}
