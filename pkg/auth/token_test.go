package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/roadtrack-backend/pkg/config"
	"github.com/google/uuid"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "roadtrack",
	ExpirationMinutes: 30,
}

func TestMintAndParseAccessToken(t *testing.T) {
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(testJWT, now, AccessTokenPayload{UserID: userID, Email: "eng@example.com", JTI: "session-1"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(testJWT, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Subject != userID.String() {
		t.Fatalf("expected subject %s, got %s", userID, claims.Subject)
	}
	if claims.Email != "eng@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.ID != "session-1" {
		t.Fatalf("expected jti to be preserved, got %q", claims.ID)
	}
	if claims.Issuer != testJWT.Issuer {
		t.Fatalf("expected issuer %s, got %s", testJWT.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(testJWT.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestMintGeneratesJTIWhenMissing(t *testing.T) {
	token, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	claims, err := ParseAccessToken(testJWT, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		t.Fatalf("expected generated uuid jti, got %q", claims.ID)
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	token, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseAccessToken(testJWT, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}

	other := testJWT
	other.Secret = "another-secret"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected token signed with a different secret to fail")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWT
	cfg.ExpirationMinutes = 15
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("allow-expired parse should succeed: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected jti on expired token")
	}
}

func TestMintAccessTokenRequiresUser(t *testing.T) {
	if _, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("expected missing user id error")
	}
	bad := testJWT
	bad.Secret = ""
	if _, err := MintAccessToken(bad, time.Now(), AccessTokenPayload{UserID: uuid.New()}); err == nil {
		t.Fatal("expected missing secret error")
	}
}
