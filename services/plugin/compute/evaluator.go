package compute

import (
	"fmt"
	"math"

	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("compute")

// Evaluator computes expressions and templates against a collect sequence
type Evaluator struct {
	parser *Parser
	// Strict turns unresolved identifiers and template placeholders into ErrUnknownMetric
	// instead of the lenient defaults (0 for expressions, no text for templates)
	Strict bool
}

// NewEvaluator creates a lenient evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{
		parser: NewParser(),
	}
}

// EvalExpr parses and evaluates the expression text
func (e *Evaluator) EvalExpr(text string, collect *Collect) (Result, error) {
	expr, err := e.parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w in expression %q", err, text)
	}

	return e.Eval(expr, collect)
}

// Eval evaluates a parsed expression
func (e *Evaluator) Eval(node Expr, collect *Collect) (Result, error) {
	switch n := node.(type) {
	case *NumberLiteral:
		return Number(n.Value), nil
	case *Identifier:
		return e.evalIdentifier(n.Name, collect)
	case *BinaryOp:
		left, err := e.Eval(n.Left, collect)
		if err != nil {
			return nil, err
		}
		right, err := e.Eval(n.Right, collect)
		if err != nil {
			return nil, err
		}
		return Apply(n.Op, left, right)
	case *Call:
		arg, err := e.Eval(n.Arg, collect)
		if err != nil {
			return nil, err
		}
		return evalCall(n.Func, arg)
	default:
		return nil, fmt.Errorf("unknown node type: %T", node)
	}
}

func (e *Evaluator) evalIdentifier(name string, collect *Collect) (Result, error) {
	value, ok := collect.Lookup(name)
	if !ok {
		if e.Strict {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
		}

		log.Warn("identifier not found, defaulting to 0", "identifier", name)
		return Number(0), nil
	}

	if v, isVector := value.(Vector); isVector && len(v) == 1 {
		value = Number(v[0])
	}
	log.Trace("identifier resolved", "identifier", name, "value", value.String())

	return value, nil
}

func evalCall(fn Func, arg Result) (Result, error) {
	switch v := arg.(type) {
	case Number:
		return v, nil
	case Vector:
		switch fn {
		case FuncAverage:
			return Number(average(v)), nil
		case FuncMin:
			return Number(minimum(v)), nil
		case FuncMax:
			return Number(maximum(v)), nil
		}
	}

	return nil, typeMismatch("function %s can not be applied to %s", fn, arg.Kind())
}

func average(values Vector) float64 {
	sum := 0.0
	count := 0
	for _, value := range values {
		if math.IsNaN(value) {
			continue
		}
		sum += value
		count++
	}

	if count == 0 {
		return math.NaN()
	}

	return sum / float64(count)
}

// minimum and maximum skip NaN elements, like IEEE minNum/maxNum
func minimum(values Vector) float64 {
	result := math.Inf(1)
	for _, value := range values {
		if value < result {
			result = value
		}
	}

	return result
}

func maximum(values Vector) float64 {
	result := math.Inf(-1)
	for _, value := range values {
		if value > result {
			result = value
		}
	}

	return result
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *Evaluator) IsInterfaceNil() bool {
	return e == nil
}
