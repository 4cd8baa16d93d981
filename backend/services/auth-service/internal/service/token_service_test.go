package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)

	token, err := svc.GenerateToken(42, "driver")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "driver" || claims.Subject != "driver" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenRejections(t *testing.T) {
	svc := NewTokenService("secret", time.Minute)

	if _, err := svc.GenerateToken(0, "driver"); err == nil {
		t.Fatalf("expected error for zero user id")
	}

	other := NewTokenService("other-secret", time.Minute)
	foreign, err := other.GenerateToken(42, "driver")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ValidateToken(foreign); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateToken(signed); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 42})
	signed, err = hs512.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateToken(signed); err == nil {
		t.Fatalf("expected non-HS256 token to fail")
	}
}
