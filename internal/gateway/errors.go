// Package gateway holds the pieces shared by every job-dispatch endpoint:
// the error taxonomy, the JSON response envelopes, the outbound dispatcher
// and the best-effort status recorder.
package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrMisconfigured       = errors.New("misconfigured")
	ErrDispatchFailed      = errors.New("dispatch failed")
	ErrBadUpstreamResponse = errors.New("bad upstream response")
)

func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// DispatchError is returned by the Dispatcher when the processor answered
// outside the 2xx range or was unreachable. StatusCode is zero for
// network-level failures, which is the only thing distinguishing them.
type DispatchError struct {
	StatusCode int
	Body       string
}

func (e *DispatchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("processor unreachable: %s", e.Body)
	}
	return fmt.Sprintf("processor returned %d: %s", e.StatusCode, e.Body)
}

func (e *DispatchError) Unwrap() error {
	return ErrDispatchFailed
}
