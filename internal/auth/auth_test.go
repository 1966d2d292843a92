package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func sign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("  Bearer header.payload.signature ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "header.payload.signature" {
		t.Fatalf("unexpected token: %s", token)
	}

	if _, err := BearerToken(""); !errors.Is(err, ErrMissingAuthorization) {
		t.Fatalf("expected missing header error, got %v", err)
	}
	if _, err := BearerToken("Basic abc"); !errors.Is(err, ErrBadAuthorization) {
		t.Fatalf("expected bad header error, got %v", err)
	}
	if _, err := BearerToken("Bearer " + strings.Repeat(".", 100)); !errors.Is(err, ErrBadAuthorization) {
		t.Fatalf("expected bad header error, got %v", err)
	}
}

func TestUserIDHS256(t *testing.T) {
	v := NewHS256Verifier("test-secret", "todoboard", "https://issuer/")
	signed := sign(t, "test-secret", jwt.MapClaims{
		"sub": "user-123",
		"aud": "todoboard",
		"iss": "https://issuer/",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})

	userID, err := v.UserID(signed)
	if err != nil {
		t.Fatalf("unexpected error verifying token: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("unexpected user id: %s", userID)
	}
}

func TestUserIDRejectsBadTokens(t *testing.T) {
	v := NewHS256Verifier("test-secret", "todoboard", "")
	exp := time.Now().Add(5 * time.Minute).Unix()

	cases := map[string]string{
		"wrong secret": sign(t, "other", jwt.MapClaims{"sub": "u", "aud": "todoboard", "exp": exp}),
		"expired":      sign(t, "test-secret", jwt.MapClaims{"sub": "u", "aud": "todoboard", "exp": time.Now().Add(-time.Hour).Unix()}),
		"audience":     sign(t, "test-secret", jwt.MapClaims{"sub": "u", "aud": "other", "exp": exp}),
		"no sub":       sign(t, "test-secret", jwt.MapClaims{"aud": "todoboard", "exp": exp}),
		"no exp":       sign(t, "test-secret", jwt.MapClaims{"sub": "u", "aud": "todoboard"}),
	}
	for name, token := range cases {
		if _, err := v.UserID(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}
