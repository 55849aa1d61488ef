package auth

import (
	"errors"
	"testing"
	"time"

	"lovegift/config"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{AccessSecret: "secret", AccessExpiry: time.Minute, Issuer: "lovegift"}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	tok, err := GenerateAccessToken(cfg, 42, "sam@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseAccessToken(cfg, tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.MemberID != 42 || claims.Email != "sam@example.com" || claims.Subject != "42" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	cfg := testConfig()
	tok, _ := GenerateAccessToken(cfg, 42, "sam@example.com")

	other := testConfig()
	other.AccessSecret = "different"
	if _, err := ParseAccessToken(other, tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: expected ErrInvalidToken, got %v", err)
	}

	expired := testConfig()
	expired.AccessExpiry = -time.Minute
	old, _ := GenerateAccessToken(expired, 42, "sam@example.com")
	if _, err := ParseAccessToken(cfg, old); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: expected ErrInvalidToken, got %v", err)
	}

	if _, err := ParseAccessToken(cfg, "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: expected ErrInvalidToken, got %v", err)
	}
}
