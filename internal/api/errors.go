// Package api provides error types for Practica API responses.
package api

import (
	"errors"
	"fmt"
	nethttp "net/http"
)

// APIError is a rejected Practica API call: a non-2xx status, or a 2xx
// envelope carrying success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("practica api: status %d: %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether an error is a token rejection.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == nethttp.StatusUnauthorized ||
			apiErr.StatusCode == nethttp.StatusForbidden
	}
	return false
}

// IsNotFound reports whether an error is a missing folder or request.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == nethttp.StatusNotFound
	}
	return false
}
