package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sferrors "github.com/randalmurphal/storyflow/errors"
)

type contextKey string

const claimsKey contextKey = "storyflow.auth.claims"

// WithClaims adds claims to the context.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext returns the claims of the authenticated request, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// Middleware rejects requests without a valid bearer token and stores the
// claims in the request context.
func Middleware(cfg JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				writeUnauthorized(w, err)
				return
			}
			claims, err := ParseToken(cfg, token)
			if err != nil {
				writeUnauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireScope rejects requests whose token lacks scope. It must run after
// Middleware; without claims in the context the request is let through, so
// routes stay open when authentication is disabled.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c := ClaimsFromContext(r.Context()); c != nil && !c.HasScope(scope) {
				writeError(w, http.StatusForbidden, ErrInsufficientScope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeUnauthorized answers 401 with the error plus the user-facing message
// and suggestion for it.
func writeUnauthorized(w http.ResponseWriter, err error) {
	desc := "invalid_token"
	if errors.Is(err, ErrMissingToken) {
		desc = "missing_token"
	}
	w.Header().Set("WWW-Authenticate", `Bearer error="`+desc+`"`)

	body := map[string]string{"error": err.Error()}
	var cliErr *sferrors.CLIError
	if errors.As(sferrors.WrapAuthError(fmt.Errorf("%w: %w", sferrors.ErrNotAuthenticated, err)), &cliErr) {
		body["message"] = cliErr.Message
		body["suggestion"] = cliErr.Suggestion
	}
	writeJSON(w, http.StatusUnauthorized, body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
