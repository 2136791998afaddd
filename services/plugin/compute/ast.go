package compute

import (
	"strconv"
	"strings"
)

// Op is an arithmetic operator of a BinaryOp node
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

// Func is one of the aggregate functions callable from an expression
type Func int

const (
	FuncAverage Func = iota
	FuncMin
	FuncMax
)

var functions = map[string]Func{
	"Average": FuncAverage,
	"Min":     FuncMin,
	"Max":     FuncMax,
}

// Expr is a node of a parsed expression. The set of implementations is closed.
type Expr interface {
	String() string
	exprNode()
}

// NumberLiteral is a constant
type NumberLiteral struct {
	Value float64
}

// Identifier references a collected value by name
type Identifier struct {
	Name string
}

// BinaryOp applies Op to the results of Left and Right
type BinaryOp struct {
	Op    Op
	Left  Expr
	Right Expr
}

// Call applies Func to the result of Arg
type Call struct {
	Func Func
	Arg  Expr
}

func (n *NumberLiteral) exprNode() {}
func (n *Identifier) exprNode()    {}
func (n *BinaryOp) exprNode()      {}
func (n *Call) exprNode()          {}

func (n *NumberLiteral) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n *Identifier) String() string {
	return "{" + n.Name + "}"
}

func (n *BinaryOp) String() string {
	var out strings.Builder
	out.WriteString("(")
	out.WriteString(n.Left.String())
	out.WriteString(" " + n.Op.String() + " ")
	out.WriteString(n.Right.String())
	out.WriteString(")")

	return out.String()
}

func (n *Call) String() string {
	return n.Func.String() + "(" + n.Arg.String() + ")"
}

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

func (f Func) String() string {
	switch f {
	case FuncAverage:
		return "Average"
	case FuncMin:
		return "Min"
	case FuncMax:
		return "Max"
	default:
		return "?"
	}
}
