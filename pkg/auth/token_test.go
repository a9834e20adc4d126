package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/config"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "fleetfuel",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	userID := uuid.New()
	sectorID := uuid.New()

	payload := AccessTokenPayload{
		UserID:   userID,
		Role:     enums.UserRoleExecutor,
		SectorID: &sectorID,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.UserRoleExecutor {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.SectorID == nil || *claims.SectorID != sectorID {
		t.Fatal("sector id not preserved")
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
	if !claims.ExpiresAt.After(now.Add(29 * time.Minute)) {
		t.Fatalf("expiry too close: %s", claims.ExpiresAt)
	}
}

func TestMintAccessTokenRejectsBadConfig(t *testing.T) {
	payload := AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin}

	cases := []struct {
		name string
		cfg  config.JWTConfig
	}{
		{"missing secret", config.JWTConfig{Issuer: "fleetfuel", ExpirationMinutes: 30}},
		{"missing issuer", config.JWTConfig{Secret: "secret", ExpirationMinutes: 30}},
		{"zero ttl", config.JWTConfig{Secret: "secret", Issuer: "fleetfuel"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MintAccessToken(tc.cfg, time.Now(), payload); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseAccessTokenRejectsTampering(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "fleetfuel", ExpirationMinutes: 30}
	token, err := MintAccessToken(cfg, time.Now().UTC(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	wrongSecret := config.JWTConfig{Secret: "other", Issuer: "fleetfuel", ExpirationMinutes: 30}
	if _, err := ParseAccessToken(wrongSecret, token); err == nil {
		t.Fatal("expected signature rejection")
	}

	mangled := token[:strings.LastIndex(token, ".")] + ".aaaa"
	if _, err := ParseAccessToken(cfg, mangled); err == nil {
		t.Fatal("expected mangled token rejection")
	}
}
