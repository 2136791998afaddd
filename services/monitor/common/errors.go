package common

import "errors"

// ErrCheckNotFound signals that no check with the provided name is stored
var ErrCheckNotFound = errors.New("check not found")
