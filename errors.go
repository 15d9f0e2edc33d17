package kin

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownRule is returned by NewRule for a rule class that is not registered.
	ErrUnknownRule = errors.New("unknown rule")

	// ErrArgCount is returned when a rule is given the wrong number of arguments.
	ErrArgCount = errors.New("wrong number of rule arguments")

	// ErrLoop is matched by every *LoopError.
	ErrLoop = errors.New("relationship loop detected")

	// ErrFilterRecursion is returned when filters refer to each other in a cycle.
	ErrFilterRecursion = errors.New("filter recursion")

	// ErrNoEvaluator is returned when compiling an expression rule on an
	// engine without an Evaluator.
	ErrNoEvaluator = errors.New("no evaluator configured")

	// ErrNotCompiled is returned when an expression rule is applied before
	// it has been compiled.
	ErrNotCompiled = errors.New("rule not compiled")
)

// LoopError reports a relationship loop in the tree: following the links
// of Person1 leads back to Person2, who is already on the path being
// walked. Such loops are errors in the data (someone recorded as their own
// ancestor).
type LoopError struct {
	Person1Name string
	Person1ID   string
	Person2Name string
	Person2ID   string
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("relationship loop detected between %s [%s] and %s [%s]",
		e.Person1Name, e.Person1ID, e.Person2Name, e.Person2ID)
}

// Is makes errors.Is(err, ErrLoop) true for a *LoopError.
func (e *LoopError) Is(target error) bool {
	return target == ErrLoop
}

func recursionError(chain []string, name string) error {
	return fmt.Errorf("%w: %s -> %s", ErrFilterRecursion, strings.Join(chain, " -> "), name)
}
