package compute

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollect(items map[string]Result) *Collect {
	return NewCollect(Namespace{Name: "test", Items: items})
}

func evalNumber(t *testing.T, e *Evaluator, expr string, collect *Collect) float64 {
	res, err := e.EvalExpr(expr, collect)
	require.NoError(t, err, expr)

	n, ok := res.(Number)
	require.True(t, ok, "expected a number for %q, got %s", expr, res.Kind())

	return float64(n)
}

func TestEvaluator_Arithmetic(t *testing.T) {
	t.Parallel()

	e := NewEvaluator()
	empty := NewCollect()

	assert.Equal(t, 123.0, evalNumber(t, e, "123", empty))
	assert.Equal(t, 3.0, evalNumber(t, e, "1 + 2", empty))
	assert.Equal(t, 0.0, evalNumber(t, e, "1 + 2 - 3", empty))
	assert.Equal(t, 2.0, evalNumber(t, e, "1 - 2 + 3", empty))
	assert.Equal(t, -4.0, evalNumber(t, e, "1 - (2 + 3)", empty))
	assert.Equal(t, -8.0, evalNumber(t, e, "1 - (2 + (3 - (4 + (5 - (6 + 7)))))", empty))
	assert.Equal(t, 6.0, evalNumber(t, e, "2 * 3", empty))
	assert.Equal(t, 7.0, evalNumber(t, e, "1 + 2 * 3", empty))
	assert.Equal(t, 9.0, evalNumber(t, e, "(1 + 2) * 3", empty))
	assert.Equal(t, 24.0, evalNumber(t, e, "2 * 3 * 4", empty))
	assert.Equal(t, 3.0, evalNumber(t, e, "2 * 3 / 2", empty))
	assert.Equal(t, 4.0, evalNumber(t, e, "1 + (3 + 2 * 3) / 3", empty))

	t.Run("division by zero does not fail", func(t *testing.T) {
		t.Parallel()

		assert.True(t, math.IsInf(evalNumber(t, e, "2 / 0", empty), 1))
		assert.True(t, math.IsNaN(evalNumber(t, e, "0 / 0", empty)))
	})
}

func TestEvaluator_Identifiers(t *testing.T) {
	t.Parallel()

	collect := newTestCollect(map[string]Result{
		"abc":   Vector{1},
		"free":  Vector{29600},
		"total": Vector{747712},
	})

	e := NewEvaluator()
	assert.Equal(t, 2.0, evalNumber(t, e, "{abc} + 1", collect))
	assert.Equal(t, 96.04125652657707, evalNumber(t, e, "100 * (1 - {free}/{total})", collect))

	t.Run("first namespace wins", func(t *testing.T) {
		t.Parallel()

		c := NewCollect(
			Namespace{Name: "first", Items: map[string]Result{"x": Vector{10}}},
			Namespace{Name: "second", Items: map[string]Result{"x": Vector{20}, "y": Number(5)}},
		)
		assert.Equal(t, 15.0, evalNumber(t, e, "{x} + {y}", c))
	})
	t.Run("unknown identifier defaults to zero", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 1.0, evalNumber(t, e, "{missing} + 1", collect))
	})
	t.Run("unknown identifier in strict mode", func(t *testing.T) {
		t.Parallel()

		strict := NewEvaluator()
		strict.Strict = true
		_, err := strict.EvalExpr("{missing} + 1", collect)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownMetric))
	})
	t.Run("parse errors are reported", func(t *testing.T) {
		t.Parallel()

		_, err := e.EvalExpr("abc + 1", collect)
		require.Error(t, err)

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
	})
}

func TestEvaluator_Broadcasting(t *testing.T) {
	t.Parallel()

	abc := Vector{1, 2, 5}
	collect := newTestCollect(map[string]Result{
		"abc": abc,
		"def": Vector{3, 4},
		"ghi": Vector{5, 6, 7, 8},
	})
	e := NewEvaluator()

	eval := func(expr string) Result {
		res, err := e.EvalExpr(expr, collect)
		require.NoError(t, err, expr)
		return res
	}

	assert.Equal(t, Vector{9, 12, 12, 8}, eval("{abc}+{def}+{ghi}"))
	assert.Equal(t, Vector{4, 6, 5}, eval("{abc} + {def}"))
	assert.Equal(t, Vector{4, 6, 5}, eval("{def} + {abc}"))
	assert.Equal(t, Vector{3, 8, 5}, eval("{abc} * {def}"))
	assert.Equal(t, Vector{3, 8, 5}, eval("{def} * {abc}"))
	assert.Equal(t, Vector{-2, -2, 5}, eval("{abc} - {def}"))
	assert.Equal(t, Vector{2, 2, -5}, eval("{def} - {abc}"))
	assert.Equal(t, Vector{5, 3, 1.4, 8}, eval("{ghi} / {abc}"))
	assert.Equal(t, Vector{3, 2, 0.2}, eval("{def} / {abc}"))
	assert.Equal(t, Vector{2, 3, 6}, eval("{abc} + 1"))
	assert.Equal(t, Vector{9, 8, 5}, eval("10 - {abc}"))
	assert.Equal(t, Vector{-9, -8, -5}, eval("{abc} - 10"))
	assert.Equal(t, Vector{10, 5, 2}, eval("10 / {abc}"))
	assert.Equal(t, Vector{1, 2, 5}, eval("{abc} * 1"))

	assert.Equal(t, Vector{1, 2, 5}, abc, "operands must not be modified")
}

func TestEvaluator_Functions(t *testing.T) {
	t.Parallel()

	collect := newTestCollect(map[string]Result{
		"abc":   Vector{1, 2, 3},
		"holes": Vector{math.NaN(), 4, math.NaN(), 8},
		"nans":  Vector{math.NaN(), math.NaN()},
		"none":  Vector{},
		"label": StrVector{"a", "b"},
	})
	e := NewEvaluator()

	assert.Equal(t, 2.0, evalNumber(t, e, "Average({abc})", collect))
	assert.Equal(t, 6.0, evalNumber(t, e, "Average({holes})", collect))
	assert.True(t, math.IsNaN(evalNumber(t, e, "Average({nans})", collect)))
	assert.True(t, math.IsNaN(evalNumber(t, e, "Average({none})", collect)))
	assert.Equal(t, 1.0, evalNumber(t, e, "Min({abc})", collect))
	assert.Equal(t, 3.0, evalNumber(t, e, "Max({abc})", collect))
	assert.Equal(t, 4.0, evalNumber(t, e, "Min({holes})", collect))
	assert.Equal(t, 8.0, evalNumber(t, e, "Max({holes})", collect))
	assert.True(t, math.IsInf(evalNumber(t, e, "Min({none})", collect), 1))
	assert.True(t, math.IsInf(evalNumber(t, e, "Max({none})", collect), -1))
	assert.Equal(t, 7.0, evalNumber(t, e, "Average(7)", collect))
	assert.Equal(t, 12.0, evalNumber(t, e, "Max({abc}) * Average({abc} * 2)", collect))

	_, err := e.EvalExpr("Average({label})", collect)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestEvaluator_TypeMismatch(t *testing.T) {
	t.Parallel()

	collect := newTestCollect(map[string]Result{
		"name":   Str("eth0"),
		"labels": StrVector{"eth0", "eth1"},
		"num":    Vector{1, 2},
	})
	e := NewEvaluator()

	for _, expr := range []string{"{name} + 1", "{num} * {labels}", "2 - {labels}"} {
		_, err := e.EvalExpr(expr, collect)
		require.Error(t, err, expr)
		assert.True(t, errors.Is(err, ErrTypeMismatch), expr)
	}

	_, err := Apply(OpAdd, Empty{}, Number(1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}
