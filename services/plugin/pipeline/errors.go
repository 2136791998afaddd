package pipeline

import "errors"

// ErrNilCollect signals that a run was started without a collect sequence
var ErrNilCollect = errors.New("nil collect")

// ErrStringValue signals a metric whose value expression does not evaluate to a number or a vector
var ErrStringValue = errors.New("metric value must be a number or a vector")

// ErrStringBound signals a min or max expression that does not evaluate to a number or a vector
var ErrStringBound = errors.New("metric bound must be a number or a vector")
