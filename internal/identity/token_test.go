package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/infra/config"
)

func testTokenManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(config.JWTSettings{Secret: "test-secret", AccessTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	return m
}

func TestMintAndParseRoundTrip(t *testing.T) {
	m := testTokenManager(t)
	user := domain.User{ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleAdmin, Department: "ops"}

	raw, err := m.Mint(user, "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := m.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "u-1" || claims.Role != "admin" || claims.Department != "ops" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.Actor != "" {
		t.Fatalf("expected no actor on a direct credential, got %q", claims.Actor)
	}
}

func TestMintCarriesActorMarker(t *testing.T) {
	m := testTokenManager(t)
	target := domain.User{ID: "d-1", Role: domain.RoleDepartment}

	raw, err := m.Mint(target, "sa-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := m.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Actor != "sa-1" {
		t.Fatalf("expected actor sa-1, got %q", claims.Actor)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := testTokenManager(t)

	if _, err := m.Parse("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m := testTokenManager(t)
	other, err := NewTokenManager(config.JWTSettings{Secret: "different-secret", AccessTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}

	raw, err := other.Mint(domain.User{ID: "u-1", Role: domain.RoleAdmin}, "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := m.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issued := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	m := testTokenManager(t).WithClock(func() time.Time { return issued })

	raw, err := m.Mint(domain.User{ID: "u-1", Role: domain.RoleAdmin}, "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	m.WithClock(func() time.Time { return issued.Add(2 * time.Hour) })
	if _, err := m.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expiry rejection, got %v", err)
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager(config.JWTSettings{}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
