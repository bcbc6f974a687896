package auth

import (
	"errors"
	"testing"
	"time"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("cue-points")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPasswordHash("cue-points", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.GenerateToken(42, "dj")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := issuer.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "dj" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, _ := issuer.GenerateToken(1, "dj")

	if _, err := NewTokenIssuer("other", time.Hour).ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign secret: %v; want ErrInvalidToken", err)
	}

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := expired.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: %v; want ErrInvalidToken", err)
	}

	if _, err := issuer.ParseToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: %v; want ErrInvalidToken", err)
	}
}
