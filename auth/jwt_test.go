package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("this-is-a-test-secret-key-32-bytes!")

func TestIssueToken(t *testing.T) {
	cfg := JWTConfig{Secret: testSecret}

	t.Run("round trip", func(t *testing.T) {
		token, err := IssueToken(cfg, "uploader", ScopeThumbnailsProcess)
		if err != nil {
			t.Fatalf("IssueToken() error = %v", err)
		}

		claims, err := ParseToken(cfg, token)
		if err != nil {
			t.Fatalf("ParseToken() error = %v", err)
		}
		if claims.Subject != "uploader" {
			t.Errorf("Subject = %q, want uploader", claims.Subject)
		}
		if claims.Issuer != DefaultIssuer {
			t.Errorf("Issuer = %q, want %q", claims.Issuer, DefaultIssuer)
		}
		if !claims.HasScope(ScopeThumbnailsProcess) || claims.HasScope(ScopeFacesVerify) {
			t.Errorf("Scopes = %v", claims.Scopes)
		}
		if claims.ID == "" {
			t.Error("token ID should be set")
		}
	})

	t.Run("no scopes grants all", func(t *testing.T) {
		token, _ := IssueToken(cfg, "admin")
		claims, err := ParseToken(cfg, token)
		if err != nil {
			t.Fatalf("ParseToken() error = %v", err)
		}
		for _, s := range AllScopes {
			if !claims.HasScope(s) {
				t.Errorf("missing scope %s", s)
			}
		}
	})

	t.Run("secret too short", func(t *testing.T) {
		_, err := IssueToken(JWTConfig{Secret: []byte("short")}, "x")
		if !errors.Is(err, ErrSecretTooShort) {
			t.Errorf("error = %v, want ErrSecretTooShort", err)
		}
	})
}

func TestParseToken_Errors(t *testing.T) {
	cfg := JWTConfig{Secret: testSecret}

	expired, err := IssueToken(JWTConfig{Secret: testSecret, TTL: -time.Minute}, "x")
	if err != nil {
		t.Fatal(err)
	}
	otherIssuer, _ := IssueToken(JWTConfig{Secret: testSecret, Issuer: "someone-else"}, "x")
	otherSecret, _ := IssueToken(JWTConfig{Secret: []byte("another-secret-that-is-32-bytes-long")}, "x")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: DefaultIssuer},
	})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expired, ErrTokenExpired},
		{"wrong issuer", otherIssuer, ErrInvalidToken},
		{"wrong secret", otherSecret, ErrInvalidToken},
		{"alg none", unsigned, ErrInvalidToken},
		{"garbage", "not.a.token", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(cfg, tt.token); !errors.Is(err, tt.want) {
				t.Errorf("ParseToken() error = %v, want %v", err, tt.want)
			}
		})
	}
}
