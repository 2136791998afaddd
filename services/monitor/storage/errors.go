package storage

import "errors"

var errEmptyCheckName = errors.New("empty check name")
