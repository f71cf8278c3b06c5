// Package http provides the retrying HTTP client used by remote collaborators.
package http

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for remote services.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates invalid or missing authentication.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("bad request")

	// ErrServerError indicates a server-side error occurred.
	ErrServerError = errors.New("server error")
)

// APIError represents an error response from a remote service.
type APIError struct {
	// Service is the name of the remote (e.g., "face-encoder", "webhook").
	Service string

	// StatusCode is the HTTP status code returned.
	StatusCode int

	// Message is the error message from the API.
	Message string

	// Endpoint is the path that was called.
	Endpoint string

	// RequestID is the request ID for debugging (if available).
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s API error (%d) at %s [%s]: %s",
			e.Service, e.StatusCode, e.Endpoint, e.RequestID, e.Message)
	}
	return fmt.Sprintf("%s API error (%d) at %s: %s",
		e.Service, e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap returns the underlying sentinel error based on status code.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 400, 422:
		return ErrBadRequest
	case 401, 403:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	case 429:
		return ErrRateLimited
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// IsNotFound reports whether the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether the error indicates authentication failed.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRetryable reports whether the error is transient and should be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError)
}
