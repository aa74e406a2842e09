package expr

import "fmt"

// Evaluator evaluates expression trees against parameter bindings.
// It holds no per-call state and is safe for concurrent use.
type Evaluator struct {
	maxDepth int
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	return &Evaluator{maxDepth: buildOptions(opts).maxDepth}
}

var defaultEvaluator = New()

// Evaluate is a convenience function that evaluates x using the default
// evaluator.
func Evaluate(x Expr, params Params) (Value, error) {
	return defaultEvaluator.Evaluate(x, params)
}

// Evaluate computes the value of x.
//
// Both operands of every operation are evaluated, left then right, before the
// operator is applied; && and || do not short-circuit. Errors are
// *ParameterError, *OperationError or *DepthError.
func (e *Evaluator) Evaluate(x Expr, params Params) (Value, error) {
	return e.eval(x, params, 1)
}

func (e *Evaluator) eval(x Expr, params Params, depth int) (Value, error) {
	if depth > e.maxDepth {
		return Value{}, &DepthError{Max: e.maxDepth}
	}

	switch n := x.(type) {
	case *Identifier:
		v, ok := params[n.Name]
		if !ok {
			return Value{}, &ParameterError{Name: n.Name}
		}
		return v, nil
	case *Literal:
		return n.Value, nil
	case *Binary:
		left, err := e.eval(n.Left, params, depth+1)
		if err != nil {
			return Value{}, err
		}
		right, err := e.eval(n.Right, params, depth+1)
		if err != nil {
			return Value{}, err
		}
		return Apply(left, n.Op, right)
	default:
		return Value{}, fmt.Errorf("%w: unsupported node %T", ErrInvalidExpr, x)
	}
}
