package usecase

import (
	"context"
	"net/url"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/dispatch-console-auth/internal/repository/memory"
)

func newTestRegistry(t *testing.T) *TabRegistry {
	t.Helper()

	durable := memory.NewStore()
	log := zaptest.NewLogger(t)

	factory := func(tabID string) *TabSession {
		identity := &fakeIdentityProvider{}
		tabStore := memory.NewStore()
		auth := NewAuthStateStore(tabID, durable, identity, nil, log)
		return &TabSession{
			ID:            tabID,
			Bootstrap:     NewBootstrapper(durable, tabStore, 8*time.Hour, log),
			Auth:          auth,
			Impersonation: NewImpersonationController(tabID, auth, durable, identity, nil, log),
		}
	}
	return NewTabRegistry(factory, log)
}

func TestRegistryReturnsSameSessionPerTab(t *testing.T) {
	registry := newTestRegistry(t)

	first := registry.Get("tab-1")
	second := registry.Get("tab-1")
	other := registry.Get("tab-2")

	if first != second {
		t.Fatalf("expected stable session for a tab id")
	}
	if first == other {
		t.Fatalf("expected distinct sessions per tab id")
	}
	if registry.Len() != 2 {
		t.Fatalf("expected 2 live sessions, got %d", registry.Len())
	}
}

func TestRegistryBootstrapRunsOncePerTab(t *testing.T) {
	registry := newTestRegistry(t)
	tab := registry.Get("tab-1")
	ctx := context.Background()

	if outcome := tab.BootstrapOnce(ctx, PathLogin, url.Values{}); outcome != OutcomeNewSession {
		t.Fatalf("expected new session on first bootstrap, got %s", outcome)
	}
	if outcome := tab.BootstrapOnce(ctx, PathLogin, url.Values{}); outcome != OutcomeContinuing {
		t.Fatalf("expected continuing on repeat bootstrap, got %s", outcome)
	}
}

func TestRegistryCloseDropsSession(t *testing.T) {
	registry := newTestRegistry(t)
	registry.Get("tab-1")

	registry.Close("tab-1")
	if registry.Len() != 0 {
		t.Fatalf("expected registry empty after close, got %d", registry.Len())
	}

	// Closing an unknown tab is a no-op.
	registry.Close("tab-unknown")
}
