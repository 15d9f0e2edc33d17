package cel

import (
	"context"
	"fmt"
	"sync"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"github.com/ezachrisen/kin"
	"github.com/ezachrisen/kin/genealogy"
)

// Evaluator compiles CEL expressions over a person. It implements
// kin.Evaluator and is safe for concurrent use.
type Evaluator struct {
	opts options

	once sync.Once
	env  *celgo.Env
	err  error
}

type options struct {
	costLimit uint64
	envOpts   []celgo.EnvOption
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(o *options)

// CostLimit aborts evaluation of expressions whose runtime cost exceeds n.
// Default: no limit
func CostLimit(n uint64) EvaluatorOption {
	return func(o *options) {
		o.costLimit = n
	}
}

// EnvOptions adds declarations (functions, variables, libraries) to the
// CEL environment.
func EnvOptions(opts ...celgo.EnvOption) EvaluatorOption {
	return func(o *options) {
		o.envOpts = append(o.envOpts, opts...)
	}
}

// NewEvaluator returns an evaluator with the standard CEL library, the
// strings extension and the date_matches function.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(&e.opts)
	}
	return e
}

func (e *Evaluator) environment() (*celgo.Env, error) {
	e.once.Do(func() {
		opts := []celgo.EnvOption{
			ext.Strings(),
			celgo.Variable(personVar, celgo.MapType(celgo.StringType, celgo.DynType)),
			dateMatches(),
		}
		opts = append(opts, e.opts.envOpts...)
		e.env, e.err = celgo.NewEnv(opts...)
	})
	return e.env, e.err
}

// Compile parses and type-checks the expression, which must produce a
// boolean.
func (e *Evaluator) Compile(expr string) (kin.Program, error) {
	env, err := e.environment()
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compiling expression: %w", iss.Err())
	}

	if !ast.OutputType().IsExactType(celgo.BoolType) {
		return nil, fmt.Errorf("expression produces %s, want bool", ast.OutputType())
	}

	popts := []celgo.ProgramOption{celgo.InterruptCheckFrequency(100)}
	if e.opts.costLimit > 0 {
		popts = append(popts, celgo.CostLimit(e.opts.costLimit))
	}
	prg, err := env.Program(ast, popts...)
	if err != nil {
		return nil, fmt.Errorf("generating program: %w", err)
	}
	return &program{expr: expr, prg: prg}, nil
}

type program struct {
	expr string
	prg  celgo.Program
}

// Eval evaluates the expression with the person bound to the "person"
// variable. Evaluation errors, such as a missing map key, are returned
// rather than treated as false.
func (p *program) Eval(ctx context.Context, person *genealogy.Person) (bool, error) {
	val, _, err := p.prg.ContextEval(ctx, map[string]any{personVar: PersonData(person)})
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", p.expr, err)
	}
	b, ok := val.Value().(bool)
	if !ok {
		return false, fmt.Errorf("evaluating %q: got %T, want bool", p.expr, val.Value())
	}
	return b, nil
}
