package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a transport-level failure: a non-2xx status or a malformed
// response. It always carries the server's message when one was sent.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsCanceled reports whether err is a benign cancellation: the caller
// navigated away and abandoned the request. Not treated as a failure.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
