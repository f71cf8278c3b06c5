package errors

import "errors"

// Sentinel errors shared across storyflow.
var (
	// ErrMissingConfig indicates a required setting is absent.
	ErrMissingConfig = errors.New("missing configuration")

	// ErrInvalidConfig indicates a setting has an unusable value.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoFace indicates an image contains no detectable face.
	ErrNoFace = errors.New("no face found in image")

	// ErrUnsupportedFormat indicates an image format that cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrLLMUnavailable indicates the language model backend could not be used.
	ErrLLMUnavailable = errors.New("language model unavailable")

	// ErrConnectionFailed indicates a remote service is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrNotAuthenticated indicates a request lacked valid credentials.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired indicates the bearer token has expired.
	ErrSessionExpired = errors.New("session expired")
)
