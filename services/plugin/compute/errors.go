package compute

import (
	"errors"
	"fmt"
)

// ErrLex signals an invalid byte or a malformed number in an expression
var ErrLex = errors.New("lexical error")

// ErrTypeMismatch signals an operator or function applied to an incompatible result
var ErrTypeMismatch = errors.New("type mismatch")

// ErrUnknownMetric signals an identifier that no namespace of the collect sequence defines
var ErrUnknownMetric = errors.New("unknown metric")

// ParseError describes a grammar violation at a byte offset of the expression
type ParseError struct {
	Pos int
	Msg string
	Err error
}

// Error returns the string representation of the error
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
}

// Unwrap returns the underlying cause, if any
func (e *ParseError) Unwrap() error {
	return e.Err
}

func typeMismatch(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrTypeMismatch, fmt.Sprintf(format, args...))
}
