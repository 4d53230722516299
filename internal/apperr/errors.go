// Package apperr defines the error kinds surfaced by the search API.
//
// Callers wrap one of the sentinels with fmt.Errorf("...: %w", apperr.ErrX)
// and the HTTP edge maps it to a status code with HTTPStatus.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is a caller fault: bad query, k out of range, unknown mode, unsafe filename.
	ErrValidation = errors.New("validation error")
	// ErrUnavailable means a dependency (embedder, store) is not configured or not reachable.
	ErrUnavailable = errors.New("service unavailable")
	// ErrNotFound means the requested file or object does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStore is a connection or query failure against the store.
	ErrStore = errors.New("store error")
)

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
