package collector

import (
	"errors"
	"net/http"
)

// ErrNothingCollected signals that every configured endpoint failed
var ErrNothingCollected = errors.New("no endpoint could be collected")

type errStatusNotOK int

func (e errStatusNotOK) Error() string {
	return "non-2xx HTTP status code: " + http.StatusText(int(e))
}

type errPathNotFound string

func (e errPathNotFound) Error() string {
	return "JSON path not found in response: " + string(e)
}

type errNotAnArray string

func (e errNotAnArray) Error() string {
	return "JSON path does not hold an array, can not walk it: " + string(e)
}
