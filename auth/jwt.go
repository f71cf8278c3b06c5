package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultIssuer names the media service as token issuer.
const DefaultIssuer = "storyflow-mediad"

// DefaultTokenTTL is the lifetime of issued tokens.
const DefaultTokenTTL = 24 * time.Hour

// Scopes granted to media API tokens.
const (
	ScopeFacesVerify       = "faces:verify"
	ScopeThumbnailsProcess = "thumbnails:process"
)

// AllScopes lists every scope, in a stable order.
var AllScopes = []string{ScopeFacesVerify, ScopeThumbnailsProcess}

// JWTConfig holds configuration for token generation and validation.
type JWTConfig struct {
	// Secret is the HMAC signing key (must be at least 32 bytes).
	Secret []byte

	// Issuer is checked on validation. Defaults to DefaultIssuer.
	Issuer string

	// TTL is the lifetime of issued tokens. Defaults to DefaultTokenTTL.
	TTL time.Duration
}

func (c JWTConfig) issuer() string {
	if c.Issuer == "" {
		return DefaultIssuer
	}
	return c.Issuer
}

func (c JWTConfig) ttl() time.Duration {
	if c.TTL == 0 {
		return DefaultTokenTTL
	}
	return c.TTL
}

// Claims are the media API token claims.
type Claims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes"`
}

// HasScope reports whether the token grants scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// IssueToken signs a token for subject with the given scopes. No scopes
// means every scope.
func IssueToken(cfg JWTConfig, subject string, scopes ...string) (string, error) {
	if len(cfg.Secret) < 32 {
		return "", ErrSecretTooShort
	}
	if len(scopes) == 0 {
		scopes = AllScopes
	}

	tokenID, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.issuer(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ttl())),
			ID:        tokenID,
		},
		Scopes: slices.Clone(scopes),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
}

// ParseToken validates a token's signature, expiry and issuer.
func ParseToken(cfg JWTConfig, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return cfg.Secret, nil
		},
		jwt.WithIssuer(cfg.issuer()),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
