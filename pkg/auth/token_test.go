package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mleong/mangobox-backend/pkg/config"
	"github.com/mleong/mangobox-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "mangobox-test",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	userID := uuid.New()

	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: userID,
		Email:  "owner@example.com",
		Role:   enums.AdminRoleOwner,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "owner@example.com" || claims.Role != enums.AdminRoleOwner {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("jti should be assigned")
	}
}

func TestMintRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	payload := AccessTokenPayload{UserID: uuid.New(), Role: enums.AdminRoleStaff}

	cfg := testJWTConfig()
	cfg.Secret = ""
	if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
		t.Fatal("missing secret should fail")
	}

	cfg = testJWTConfig()
	payload.Role = "superuser"
	if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
		t.Fatal("unknown role should fail")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.AdminRoleStaff,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	_, err = ParseAccessToken(cfg, signed)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.AdminRoleOwner,
	})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	other := cfg
	other.Secret = "different-secret"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("wrong secret should fail verification")
	}
}
