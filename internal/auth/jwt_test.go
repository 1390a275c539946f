package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func validClaims(sub string) Claims {
	return Claims{
		Email: "ana@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestJWTVerifier_Valid(t *testing.T) {
	v, err := NewJWTVerifier(testJWTSecret, "authenticated")
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), signToken(t, testJWTSecret, validClaims("user-1")))
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v, err := NewJWTVerifier(testJWTSecret, "authenticated")
	require.NoError(t, err)

	expired := validClaims("user-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongAud := validClaims("user-1")
	wrongAud.Audience = jwt.ClaimStrings{"anon"}

	noExp := validClaims("user-1")
	noExp.ExpiresAt = nil

	tests := map[string]string{
		"wrong secret": signToken(t, "another-secret-another-secret-another", validClaims("user-1")),
		"expired":      signToken(t, testJWTSecret, expired),
		"audience":     signToken(t, testJWTSecret, wrongAud),
		"no exp":       signToken(t, testJWTSecret, noExp),
		"no subject":   signToken(t, testJWTSecret, validClaims("")),
		"garbage":      "not.a.jwt",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			assert.Error(t, err)
		})
	}
}

func TestNewJWTVerifier_RequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier("", "")
	assert.Error(t, err)
}
