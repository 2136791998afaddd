package compute

import (
	"fmt"
	"strings"
)

// Kind names the shape of a Result
type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindVector
	KindStr
	KindStrVector
)

// Result is the value of an evaluated expression or template, and the unit stored in a
// collect namespace. The set of implementations is closed.
type Result interface {
	Kind() Kind
	String() string
	result()
}

// Number is a scalar value
type Number float64

// Vector is an ordered list of values, one per polled instance
type Vector []float64

// Str is a single string
type Str string

// StrVector is an ordered list of strings, one per polled instance
type StrVector []string

// Empty is the absence of a value
type Empty struct{}

func (Number) result()    {}
func (Vector) result()    {}
func (Str) result()       {}
func (StrVector) result() {}
func (Empty) result()     {}

// Kind returns KindNumber
func (Number) Kind() Kind { return KindNumber }

// Kind returns KindVector
func (Vector) Kind() Kind { return KindVector }

// Kind returns KindStr
func (Str) Kind() Kind { return KindStr }

// Kind returns KindStrVector
func (StrVector) Kind() Kind { return KindStrVector }

// Kind returns KindEmpty
func (Empty) Kind() Kind { return KindEmpty }

func (n Number) String() string {
	return FormatFloat(float64(n))
}

func (v Vector) String() string {
	parts := make([]string, 0, len(v))
	for _, value := range v {
		parts = append(parts, FormatFloat(value))
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func (s Str) String() string {
	return string(s)
}

func (v StrVector) String() string {
	return fmt.Sprintf("%q", []string(v))
}

func (Empty) String() string {
	return "<empty>"
}

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindVector:
		return "vector"
	case KindStr:
		return "string"
	case KindStrVector:
		return "string vector"
	default:
		return "unknown"
	}
}

// Apply computes left op right with the broadcasting rules of the expression language:
//   - two numbers are combined with IEEE arithmetic
//   - a number is broadcast over every element of a vector, keeping operand order
//   - equal length vectors are combined elementwise
//   - for unequal lengths the overlapping indices are combined into a copy of the longer
//     vector. The tail of the longer one passes through unchanged, except for Sub and Div
//     when the right operand is the longer: its tail becomes -x and 1/x respectively.
//
// The operands are never modified.
func Apply(op Op, left Result, right Result) (Result, error) {
	fn := opFunc(op)

	switch l := left.(type) {
	case Number:
		switch r := right.(type) {
		case Number:
			return Number(fn(float64(l), float64(r))), nil
		case Vector:
			out := make(Vector, len(r))
			for i, value := range r {
				out[i] = fn(float64(l), value)
			}
			return out, nil
		}
	case Vector:
		switch r := right.(type) {
		case Number:
			out := make(Vector, len(l))
			for i, value := range l {
				out[i] = fn(value, float64(r))
			}
			return out, nil
		case Vector:
			return applyVectors(op, fn, l, r), nil
		}
	}

	return nil, typeMismatch("operator %s can not be applied to %s and %s", op, left.Kind(), right.Kind())
}

func applyVectors(op Op, fn func(a, b float64) float64, left Vector, right Vector) Vector {
	if len(left) != len(right) {
		log.Warn("combining vectors of different lengths", "operator", op.String(),
			"left", len(left), "right", len(right))
	}

	if len(left) >= len(right) {
		out := make(Vector, len(left))
		copy(out, left)
		for i, value := range right {
			out[i] = fn(left[i], value)
		}
		return out
	}

	out := make(Vector, len(right))
	for i, value := range right {
		if i < len(left) {
			out[i] = fn(left[i], value)
			continue
		}

		switch op {
		case OpSub:
			out[i] = -value
		case OpDiv:
			out[i] = 1 / value
		default:
			out[i] = value
		}
	}

	return out
}

func opFunc(op Op) func(a, b float64) float64 {
	switch op {
	case OpSub:
		return func(a, b float64) float64 { return a - b }
	case OpMul:
		return func(a, b float64) float64 { return a * b }
	case OpDiv:
		return func(a, b float64) float64 { return a / b }
	default:
		return func(a, b float64) float64 { return a + b }
	}
}

// Join appends other to acc following the templating rules and returns the new accumulator.
// Numeric values are rendered with FormatFloat before being joined.
func Join(acc Result, other Result) (Result, error) {
	other = stringify(other)

	switch a := acc.(type) {
	case Empty:
		switch o := other.(type) {
		case Str:
			return o, nil
		case StrVector:
			return append(StrVector(nil), o...), nil
		}
	case Str:
		switch o := other.(type) {
		case Str:
			return a + o, nil
		case StrVector:
			out := make(StrVector, len(o))
			for i, value := range o {
				out[i] = string(a) + value
			}
			return out, nil
		}
	case StrVector:
		switch o := other.(type) {
		case Str:
			out := make(StrVector, len(a))
			for i, value := range a {
				out[i] = value + string(o)
			}
			return out, nil
		case StrVector:
			return joinStrVectors(a, o), nil
		}
	}

	return nil, typeMismatch("unable to join %s with %s", acc.Kind(), other.Kind())
}

func joinStrVectors(left StrVector, right StrVector) StrVector {
	size := len(left)
	if len(right) > size {
		size = len(right)
	}
	if len(left) != len(right) {
		log.Warn("joining string vectors of different lengths", "left", len(left), "right", len(right))
	}

	out := make(StrVector, size)
	for i := range out {
		if i < len(left) {
			out[i] = left[i]
		}
		if i < len(right) {
			out[i] += right[i]
		}
	}

	return out
}

func stringify(value Result) Result {
	switch v := value.(type) {
	case Number:
		return Str(FormatFloat(float64(v)))
	case Vector:
		out := make(StrVector, len(v))
		for i, item := range v {
			out[i] = FormatFloat(item)
		}
		return out
	default:
		return value
	}
}
