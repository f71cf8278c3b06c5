package errors

import (
	"fmt"
	"strings"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// Messenger provides customizable error messages.
type Messenger interface {
	// MissingConfigMessage returns the message and suggestion for an unset key.
	MissingConfigMessage(key string) (message, suggestion string)

	// LLMUnavailableMessage returns the message and suggestion when the
	// model backend fails to start or answer.
	LLMUnavailableMessage(backend string) (message, suggestion string)

	// ConnectionErrorMessage returns the message and suggestion for connection errors.
	ConnectionErrorMessage(serverURL string) (message, suggestion string)

	// TimeoutErrorMessage returns the message and suggestion for timeout errors.
	TimeoutErrorMessage(serverURL string) (message, suggestion string)

	// AuthErrorMessage returns the message and suggestion for rejected credentials.
	AuthErrorMessage() (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) MissingConfigMessage(key string) (string, string) {
	env := "STORYFLOW_" + strings.ToUpper(key)
	return fmt.Sprintf("Setting %q is not configured.", key),
		fmt.Sprintf("Set %s, add %q to .storyflow.yaml, or run 'storyflow config set %s <value>'.", env, key, key)
}

func (m DefaultMessenger) LLMUnavailableMessage(backend string) (string, string) {
	switch backend {
	case "anthropic":
		return "The Anthropic API could not be reached.",
			"Check STORYFLOW_ANTHROPIC_API_KEY and your network connection."
	default:
		return "The claude CLI could not be run.",
			"Check that 'claude' is installed and on your PATH, or use --backend anthropic."
	}
}

func (m DefaultMessenger) ConnectionErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Cannot connect to %s", serverURL),
		"Check that:\n  - The service is running\n  - The URL is correct\n  - Your network connection is working"
}

func (m DefaultMessenger) TimeoutErrorMessage(serverURL string) (string, string) {
	return fmt.Sprintf("Connection to %s timed out", serverURL),
		"The service may be overloaded or unreachable.\nTry again in a moment."
}

func (m DefaultMessenger) AuthErrorMessage() (string, string) {
	return "The request was not authorized.",
		"Create a token with 'mediad token' and send it as a Bearer token."
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger Messenger
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m Messenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

func getMessenger(opts []Option) Messenger {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.Messenger
}

// NewMissingConfigError creates an error for an unset required key.
func NewMissingConfigError(key string, opts ...Option) error {
	msg, suggestion := getMessenger(opts).MissingConfigMessage(key)
	return &CLIError{
		Err:        fmt.Errorf("%w: %s", ErrMissingConfig, key),
		Message:    msg,
		Suggestion: suggestion,
	}
}

// WrapLLMError wraps a model backend failure. Connection and timeout
// failures, and a missing CLI binary, become ErrLLMUnavailable; anything
// else is returned unchanged.
func WrapLLMError(err error, backend string, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	if !IsConnectionError(err) &&
		!strings.Contains(errStr, "executable file not found") &&
		!strings.Contains(errStr, "no such file or directory") {
		return err
	}

	msg, suggestion := getMessenger(opts).LLMUnavailableMessage(backend)
	return &CLIError{
		Err:        fmt.Errorf("%w: %w", ErrLLMUnavailable, err),
		Message:    msg,
		Details:    err.Error(),
		Suggestion: suggestion,
	}
}

// WrapConnectionError wraps connection-related errors with helpful guidance.
func WrapConnectionError(err error, serverURL string, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	messenger := getMessenger(opts)

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		msg, suggestion := messenger.TimeoutErrorMessage(serverURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	if IsConnectionError(err) {
		msg, suggestion := messenger.ConnectionErrorMessage(serverURL)
		return &CLIError{
			Err:        ErrConnectionFailed,
			Message:    msg,
			Details:    err.Error(),
			Suggestion: suggestion,
		}
	}

	return err
}

// WrapAuthError wraps token rejections with helpful guidance.
func WrapAuthError(err error, opts ...Option) error {
	if err == nil {
		return nil
	}

	errStr := strings.ToLower(err.Error())
	msg, suggestion := getMessenger(opts).AuthErrorMessage()

	if strings.Contains(errStr, "token") && strings.Contains(errStr, "expired") {
		return &CLIError{
			Err:        ErrSessionExpired,
			Message:    "Your token has expired.",
			Suggestion: suggestion,
		}
	}

	if IsAuthError(err) {
		return &CLIError{
			Err:        ErrNotAuthenticated,
			Message:    msg,
			Suggestion: suggestion,
		}
	}

	return err
}
