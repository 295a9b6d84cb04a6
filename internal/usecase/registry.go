package usecase

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"
)

// TabSession groups the per-tab components: its exclusive tab-scoped store,
// the bootstrap routine, the auth state store, and the impersonation
// controller. All tabs of one profile share the durable store behind these.
type TabSession struct {
	ID            string
	Bootstrap     *Bootstrapper
	Auth          *AuthStateStore
	Impersonation *ImpersonationController

	once sync.Once
}

// BootstrapOnce runs the bootstrap routine exactly once for the tab's
// lifetime; later calls are no-ops returning the continuing classification.
func (t *TabSession) BootstrapOnce(ctx context.Context, path string, query url.Values) BootstrapOutcome {
	outcome := OutcomeContinuing
	t.once.Do(func() {
		outcome = t.Bootstrap.Bootstrap(ctx, path, query)
	})
	return outcome
}

// TabSessionFactory builds the component set for a newly observed tab.
type TabSessionFactory func(tabID string) *TabSession

// TabRegistry tracks live tab sessions. Each browser tab is an independent
// cooperative process; the registry only provides lookup and teardown.
type TabRegistry struct {
	mu    sync.Mutex
	tabs  map[string]*TabSession
	build TabSessionFactory
	log   *zap.Logger
}

// NewTabRegistry constructs a registry backed by the supplied factory.
func NewTabRegistry(build TabSessionFactory, log *zap.Logger) *TabRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &TabRegistry{
		tabs:  make(map[string]*TabSession),
		build: build,
		log:   log,
	}
}

// Get returns the session for a tab, creating it on first sight.
func (r *TabRegistry) Get(tabID string) *TabSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tab, ok := r.tabs[tabID]; ok {
		return tab
	}

	tab := r.build(tabID)
	r.tabs[tabID] = tab
	r.log.Debug("tab session created", zap.String("tab_id", tabID))
	return tab
}

// Close tears down a tab session. The tab-scoped storage dies with it.
func (r *TabRegistry) Close(tabID string) {
	r.mu.Lock()
	tab, ok := r.tabs[tabID]
	delete(r.tabs, tabID)
	r.mu.Unlock()

	if ok {
		tab.Impersonation.Close()
		r.log.Debug("tab session closed", zap.String("tab_id", tabID))
	}
}

// Len reports how many tab sessions are live.
func (r *TabRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tabs)
}
