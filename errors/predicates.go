package errors

import (
	"errors"
	"strings"
)

// IsConfigError checks if an error is a missing or invalid setting.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrMissingConfig) || errors.Is(err, ErrInvalidConfig)
}

// IsConnectionError checks if an error is connection-related.
// This includes TLS errors, timeouts, and network connectivity issues.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrConnectionFailed) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"dial tcp",
		"certificate",
		"tls",
		"x509",
		"timeout",
		"deadline exceeded",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrSessionExpired) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unauthenticated") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "401")
}

// IsLLMError checks if an error means the model backend is unavailable.
func IsLLMError(err error) bool {
	return err != nil && errors.Is(err, ErrLLMUnavailable)
}

// IsMediaError checks if an error is caused by the submitted image rather
// than by the service.
func IsMediaError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNoFace) || errors.Is(err, ErrUnsupportedFormat)
}
