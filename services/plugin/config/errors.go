package config

import "errors"

// ErrEmptyEndpointName signals a collection rule without a name
var ErrEmptyEndpointName = errors.New("empty endpoint name")

// ErrUnknownQuery signals a collection rule whose query is neither get nor walk
var ErrUnknownQuery = errors.New("unknown query")

// ErrDuplicateEndpointName signals two collection rules sharing the same name
var ErrDuplicateEndpointName = errors.New("duplicate endpoint name")
