package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCLIError(t *testing.T) {
	err := &CLIError{
		Err:        ErrMissingConfig,
		Message:    "Test message",
		Suggestion: "Test suggestion",
		Details:    "Test details",
	}

	errStr := err.Error()
	for _, want := range []string{"Test message", "Test details", "Test suggestion"} {
		if !strings.Contains(errStr, want) {
			t.Errorf("expected error to contain %q, got %q", want, errStr)
		}
	}

	if !errors.Is(err, ErrMissingConfig) {
		t.Error("expected error to unwrap to ErrMissingConfig")
	}
}

func TestCLIError_MinimalFields(t *testing.T) {
	err := &CLIError{
		Err:     ErrConnectionFailed,
		Message: "Connection failed",
	}

	if errStr := err.Error(); errStr != "Connection failed" {
		t.Errorf("expected 'Connection failed', got %q", errStr)
	}
}

func TestNewMissingConfigError(t *testing.T) {
	err := NewMissingConfigError("processed_bucket")

	if !errors.Is(err, ErrMissingConfig) {
		t.Error("expected ErrMissingConfig")
	}
	if !IsConfigError(err) {
		t.Error("IsConfigError() = false, want true")
	}
	if !strings.Contains(err.Error(), "STORYFLOW_PROCESSED_BUCKET") {
		t.Errorf("suggestion should name the env var, got %q", err.Error())
	}
}

func TestWrapLLMError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		backend     string
		unavailable bool
	}{
		{"nil error", nil, "claude-cli", false},
		{"missing binary", errors.New(`exec: "claude": executable file not found in $PATH`), "claude-cli", true},
		{"connection refused", errors.New("dial tcp 127.0.0.1:443: connection refused"), "anthropic", true},
		{"bad request", errors.New("400 invalid model"), "anthropic", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapLLMError(tt.err, tt.backend)
			if tt.err == nil {
				if got != nil {
					t.Errorf("WrapLLMError(nil) = %v, want nil", got)
				}
				return
			}
			if IsLLMError(got) != tt.unavailable {
				t.Errorf("IsLLMError() = %v, want %v", IsLLMError(got), tt.unavailable)
			}
			if !errors.Is(got, tt.err) {
				t.Error("wrapped error should still match the original")
			}
		})
	}
}

func TestWrapLLMError_BackendMessage(t *testing.T) {
	err := WrapLLMError(errors.New("connection refused"), "anthropic")
	if !strings.Contains(err.Error(), "Anthropic API") {
		t.Errorf("message = %q, want Anthropic wording", err.Error())
	}

	err = WrapLLMError(errors.New("executable file not found"), "claude-cli")
	if !strings.Contains(err.Error(), "claude CLI") {
		t.Errorf("message = %q, want claude CLI wording", err.Error())
	}
}

func TestWrapConnectionError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantSubstr string
		wrapped    bool
	}{
		{"connection refused", errors.New("dial tcp: connection refused"), "Cannot connect to http://encoder", true},
		{"timeout", errors.New("context deadline exceeded"), "timed out", true},
		{"tls", errors.New("x509: certificate signed by unknown authority"), "Cannot connect", true},
		{"other", errors.New("boom"), "boom", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapConnectionError(tt.err, "http://encoder")
			if !strings.Contains(got.Error(), tt.wantSubstr) {
				t.Errorf("error = %q, want substring %q", got.Error(), tt.wantSubstr)
			}
			if errors.Is(got, ErrConnectionFailed) != tt.wrapped {
				t.Errorf("errors.Is(ErrConnectionFailed) = %v, want %v", !tt.wrapped, tt.wrapped)
			}
		})
	}

	if WrapConnectionError(nil, "x") != nil {
		t.Error("WrapConnectionError(nil) should be nil")
	}
}

func TestWrapAuthError(t *testing.T) {
	if got := WrapAuthError(errors.New("token has invalid claims: token is expired")); !errors.Is(got, ErrSessionExpired) {
		t.Errorf("expired token: got %v", got)
	}
	if got := WrapAuthError(errors.New("401 unauthorized")); !errors.Is(got, ErrNotAuthenticated) {
		t.Errorf("401: got %v", got)
	}
	plain := errors.New("disk full")
	if got := WrapAuthError(plain); got != plain {
		t.Errorf("unrelated error should pass through, got %v", got)
	}
}

type testMessenger struct{ DefaultMessenger }

func (testMessenger) MissingConfigMessage(key string) (string, string) {
	return "custom " + key, "custom suggestion"
}

func TestWithMessenger(t *testing.T) {
	err := NewMissingConfigError("port", WithMessenger(testMessenger{}))
	if !strings.Contains(err.Error(), "custom port") || !strings.Contains(err.Error(), "custom suggestion") {
		t.Errorf("custom messenger not used: %q", err.Error())
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		fn   func(error) bool
		err  error
		want bool
	}{
		{"config nil", IsConfigError, nil, false},
		{"config invalid", IsConfigError, fmt.Errorf("port: %w", ErrInvalidConfig), true},
		{"connection sentinel", IsConnectionError, ErrConnectionFailed, true},
		{"connection reset", IsConnectionError, errors.New("read: connection reset by peer"), true},
		{"connection other", IsConnectionError, errors.New("not found"), false},
		{"auth sentinel", IsAuthError, fmt.Errorf("wrap: %w", ErrSessionExpired), true},
		{"auth string", IsAuthError, errors.New("HTTP 401"), true},
		{"auth other", IsAuthError, errors.New("HTTP 500"), false},
		{"media no face", IsMediaError, fmt.Errorf("reference: %w", ErrNoFace), true},
		{"media format", IsMediaError, ErrUnsupportedFormat, true},
		{"media other", IsMediaError, ErrMissingConfig, false},
		{"llm nil", IsLLMError, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
