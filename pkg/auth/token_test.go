package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims TokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-only-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestDecodeTokenReadsClaimsWithoutSecret(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signed(t, TokenClaims{
		UserID: "u-1",
		Email:  "asha@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ignored",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	claims, err := DecodeToken("Bearer " + token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if claims.Identity() != "u-1" {
		t.Fatalf("expected id claim to win, got %q", claims.Identity())
	}
	if !claims.ExpiresAt.Time.Equal(exp) {
		t.Fatalf("unexpected expiry %v", claims.ExpiresAt)
	}
	if Expired(claims, time.Now()) {
		t.Fatalf("token should still be valid")
	}
	if !Expired(claims, exp) {
		t.Fatalf("token should be expired at its exp instant")
	}
}

func TestDecodeTokenFallsBackToSubject(t *testing.T) {
	claims, err := DecodeToken(signed(t, TokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u-2"}}))
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if claims.Identity() != "u-2" {
		t.Fatalf("expected subject identity, got %q", claims.Identity())
	}
	if Expired(claims, time.Now()) {
		t.Fatalf("tokens without exp never expire")
	}
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	if _, err := DecodeToken(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
	if _, err := DecodeToken("not-a-jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
