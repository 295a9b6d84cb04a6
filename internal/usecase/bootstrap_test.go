package usecase

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/dispatch-console-auth/internal/core/port"
	"github.com/arklim/dispatch-console-auth/internal/repository"
	"github.com/arklim/dispatch-console-auth/internal/repository/memory"
)

const validUserJSON = `{"id":"u-1","name":"Ada","email":"ada@example.com","role":"admin"}`

func newBootstrapper(t *testing.T, durable port.DurableStore, tab port.TabStore, now time.Time) *Bootstrapper {
	t.Helper()
	b := NewBootstrapper(durable, tab, 8*time.Hour, zaptest.NewLogger(t))
	return b.WithClock(func() time.Time { return now })
}

func mustGet(t *testing.T, store port.KeyValueStore, key string) string {
	t.Helper()
	value, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	return value
}

func mustBeAbsent(t *testing.T, store port.KeyValueStore, key string) {
	t.Helper()
	if _, err := store.Get(context.Background(), key); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected %s to be absent, got err=%v", key, err)
	}
}

func TestBootstrapNewSessionMintsMarker(t *testing.T) {
	durable := memory.NewStore()
	tab := memory.NewStore()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	b := newBootstrapper(t, durable, tab, now)

	outcome := b.Bootstrap(context.Background(), PathLogin, url.Values{})
	if outcome != OutcomeNewSession {
		t.Fatalf("expected new session, got %s", outcome)
	}

	if id := mustGet(t, tab, port.KeySessionID); id == "" {
		t.Fatalf("expected session id to be minted")
	}
	if ts := mustGet(t, tab, port.KeySessionTimestamp); ts == "" {
		t.Fatalf("expected session timestamp to be minted")
	}
}

func TestBootstrapRetainsCredentialOnDashboardPath(t *testing.T) {
	durable := memory.NewStore()
	tab := memory.NewStore()
	ctx := context.Background()

	_ = durable.Set(ctx, port.KeyToken, "bearer-abc")
	_ = durable.Set(ctx, port.KeyUser, validUserJSON)

	b := newBootstrapper(t, durable, tab, time.Now())
	b.Bootstrap(ctx, PathAdmin, url.Values{})

	// Optimistic reuse: pair survives for backend verification.
	if token := mustGet(t, durable, port.KeyToken); token != "bearer-abc" {
		t.Fatalf("expected token retained, got %q", token)
	}
	mustGet(t, durable, port.KeyUser)
}

func TestBootstrapClearsCredentialOnPublicPath(t *testing.T) {
	durable := memory.NewStore()
	tab := memory.NewStore()
	ctx := context.Background()

	_ = durable.Set(ctx, port.KeyToken, "bearer-abc")
	_ = durable.Set(ctx, port.KeyUser, validUserJSON)

	b := newBootstrapper(t, durable, tab, time.Now())
	b.Bootstrap(ctx, PathLogin, url.Values{})

	mustBeAbsent(t, durable, port.KeyToken)
	mustBeAbsent(t, durable, port.KeyUser)
}

func TestBootstrapClearsCorruptedProfile(t *testing.T) {
	durable := memory.NewStore()
	tab := memory.NewStore()
	ctx := context.Background()

	_ = durable.Set(ctx, port.KeyToken, "bearer-abc")
	_ = durable.Set(ctx, port.KeyUser, "{not json")

	b := newBootstrapper(t, durable, tab, time.Now())
	b.Bootstrap(ctx, PathAdmin, url.Values{})

	mustBeAbsent(t, durable, port.KeyToken)
	mustBeAbsent(t, durable, port.KeyUser)
}

func TestBootstrapClearsTokenWithoutProfile(t *testing.T) {
	durable := memory.NewStore()
	tab := memory.NewStore()
	ctx := context.Background()

	_ = durable.Set(ctx, port.KeyToken, "bearer-abc")

	b := newBootstrapper(t, durable, tab, time.Now())
	b.Bootstrap(ctx, PathAdmin, url.Values{})

	mustBeAbsent(t, durable, port.KeyToken)
}

func TestBootstrapContinuingSessionLeavesStorageAlone(t *testing.T) {
	durable := memory.NewStore()
	tab := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	_ = tab.Set(ctx, port.KeySessionID, "s-1")
	_ = tab.Set(ctx, port.KeySessionTimestamp, millis(now.Add(-time.Hour)))
	_ = durable.Set(ctx, port.KeyToken, "bearer-abc")
	_ = durable.Set(ctx, port.KeyUser, validUserJSON)

	b := newBootstrapper(t, durable, tab, now)

	if outcome := b.Bootstrap(ctx, PathLogin, url.Values{}); outcome != OutcomeContinuing {
		t.Fatalf("expected continuing session, got %s", outcome)
	}

	if id := mustGet(t, tab, port.KeySessionID); id != "s-1" {
		t.Fatalf("expected session marker untouched, got %q", id)
	}
	mustGet(t, durable, port.KeyToken)
}

func TestBootstrapExpiredSessionClearsEverything(t *testing.T) {
	durable := memory.NewStore()
	tab := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	_ = tab.Set(ctx, port.KeySessionID, "s-old")
	_ = tab.Set(ctx, port.KeySessionTimestamp, millis(now.Add(-9*time.Hour)))
	_ = durable.Set(ctx, port.KeyToken, "bearer-abc")
	_ = durable.Set(ctx, port.KeyUser, validUserJSON)

	b := newBootstrapper(t, durable, tab, now)

	if outcome := b.Bootstrap(ctx, PathAdmin, url.Values{}); outcome != OutcomeExpired {
		t.Fatalf("expected expired session, got %s", outcome)
	}

	mustBeAbsent(t, durable, port.KeyToken)
	mustBeAbsent(t, durable, port.KeyUser)

	// A fresh marker replaces the stale one.
	if id := mustGet(t, tab, port.KeySessionID); id == "s-old" || id == "" {
		t.Fatalf("expected fresh session id, got %q", id)
	}
}

func TestBootstrapReturnToAdminMarkerIsNoOp(t *testing.T) {
	durable := memory.NewStore()
	tab := memory.NewStore()
	ctx := context.Background()

	_ = durable.Set(ctx, port.KeyToken, "bearer-abc")
	_ = durable.Set(ctx, port.KeyUser, validUserJSON)

	b := newBootstrapper(t, durable, tab, time.Now())

	query := url.Values{}
	query.Set(ReturnToAdminParam, "true")

	if outcome := b.Bootstrap(ctx, PathSuperAdmin, query); outcome != OutcomeReturnToAdmin {
		t.Fatalf("expected return-to-admin outcome, got %s", outcome)
	}

	// Credentials preserved mid-impersonation-return; no marker minted.
	mustGet(t, durable, port.KeyToken)
	mustBeAbsent(t, tab, port.KeySessionID)
}

func TestBootstrapUnreadableTimestampStartsFreshSession(t *testing.T) {
	durable := memory.NewStore()
	tab := memory.NewStore()
	ctx := context.Background()

	_ = tab.Set(ctx, port.KeySessionID, "s-1")
	_ = tab.Set(ctx, port.KeySessionTimestamp, "garbage")

	b := newBootstrapper(t, durable, tab, time.Now())

	if outcome := b.Bootstrap(ctx, PathLogin, url.Values{}); outcome != OutcomeNewSession {
		t.Fatalf("expected new session on unreadable marker, got %s", outcome)
	}
}

func millis(at time.Time) string {
	return strconv.FormatInt(at.UnixMilli(), 10)
}
