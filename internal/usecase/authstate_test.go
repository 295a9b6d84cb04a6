package usecase

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/core/port"
	"github.com/arklim/dispatch-console-auth/internal/repository/memory"
)

func adminUser() domain.User {
	return domain.User{ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleAdmin}
}

func seedCredential(t *testing.T, durable port.DurableStore, user domain.User, token string) {
	t.Helper()
	raw, err := domain.EncodeUser(user)
	if err != nil {
		t.Fatalf("encode user: %v", err)
	}
	ctx := context.Background()
	if err := durable.Set(ctx, port.KeyToken, token); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if err := durable.Set(ctx, port.KeyUser, raw); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func newAuthStore(t *testing.T, durable port.DurableStore, identity port.IdentityProvider) *AuthStateStore {
	t.Helper()
	return NewAuthStateStore("tab-1", durable, identity, &stubAuditPublisher{}, zaptest.NewLogger(t))
}

func TestInitializeWithoutCredentialResolvesImmediately(t *testing.T) {
	identity := &fakeIdentityProvider{}
	store := newAuthStore(t, memory.NewStore(), identity)

	state := store.Initialize(context.Background())

	if state.Status != domain.StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", state.Status)
	}
	if identity.verifyCalls != 0 {
		t.Fatalf("expected no network call, got %d", identity.verifyCalls)
	}
}

func TestInitializeConfirmsStoredCredential(t *testing.T) {
	durable := memory.NewStore()
	seedCredential(t, durable, adminUser(), "bearer-abc")

	identity := &fakeIdentityProvider{verifyUser: adminUser()}
	store := newAuthStore(t, durable, identity)

	state := store.Initialize(context.Background())

	if state.Status != domain.StatusAuthenticated {
		t.Fatalf("expected authenticated, got %s", state.Status)
	}
	if state.User == nil || state.User.ID != "u-1" {
		t.Fatalf("expected server-confirmed user, got %+v", state.User)
	}
	if err := state.Validate(); err != nil {
		t.Fatalf("state invariant violated: %v", err)
	}
}

func TestInitializeEvictsRejectedCredential(t *testing.T) {
	durable := memory.NewStore()
	seedCredential(t, durable, adminUser(), "bearer-abc")

	identity := &fakeIdentityProvider{verifyErr: errBackendDown}
	store := newAuthStore(t, durable, identity)

	state := store.Initialize(context.Background())

	if state.Status != domain.StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", state.Status)
	}
	if _, err := durable.Get(context.Background(), port.KeyToken); err == nil {
		t.Fatalf("expected token evicted")
	}
	if _, err := durable.Get(context.Background(), port.KeyUser); err == nil {
		t.Fatalf("expected user evicted")
	}
}

func TestLoginValidatesInputsLocally(t *testing.T) {
	identity := &fakeIdentityProvider{}
	store := newAuthStore(t, memory.NewStore(), identity)
	ctx := context.Background()

	if _, err := store.Login(ctx, "", "secret"); !errors.Is(err, ErrEmailRequired) {
		t.Fatalf("expected ErrEmailRequired, got %v", err)
	}
	if _, err := store.Login(ctx, "ada@example.com", ""); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
	if identity.loginCalls != 0 {
		t.Fatalf("local validation must not reach the backend, got %d calls", identity.loginCalls)
	}
}

func TestLoginSurfacesBackendErrorVerbatim(t *testing.T) {
	backendErr := errors.New("invalid credentials")
	identity := &fakeIdentityProvider{loginErr: backendErr}
	durable := memory.NewStore()
	store := newAuthStore(t, durable, identity)

	_, err := store.Login(context.Background(), "ada@example.com", "wrong")
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error unmodified, got %v", err)
	}

	// A failed login never mutates persisted state.
	if _, err := durable.Get(context.Background(), port.KeyToken); err == nil {
		t.Fatalf("expected no token persisted after failed login")
	}
	if store.State().Status != domain.StatusUnauthenticated {
		t.Fatalf("expected unauthenticated after failed login, got %s", store.State().Status)
	}
}

func TestLoginThenLogoutRestoresStorage(t *testing.T) {
	identity := &fakeIdentityProvider{
		loginCred: domain.Credential{Token: "bearer-new", User: adminUser()},
	}
	durable := memory.NewStore()
	store := newAuthStore(t, durable, identity)
	ctx := context.Background()

	user, err := store.Login(ctx, "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected resolved admin user, got %s", user.Role)
	}
	if durable.Len() == 0 {
		t.Fatalf("expected credential persisted after login")
	}

	store.Logout(ctx)

	if durable.Len() != 0 {
		t.Fatalf("expected durable storage empty after logout, got %d keys", durable.Len())
	}
	if store.State().Status != domain.StatusUnauthenticated {
		t.Fatalf("expected unauthenticated after logout, got %s", store.State().Status)
	}
}

func TestLoginSupersedesSlowInitialize(t *testing.T) {
	durable := memory.NewStore()
	staleUser := domain.User{ID: "u-stale", Name: "Old", Role: domain.RoleDriver}
	seedCredential(t, durable, staleUser, "bearer-stale")

	gate := make(chan struct{})
	identity := &fakeIdentityProvider{
		verifyUser: staleUser,
		verifyGate: gate,
		loginCred:  domain.Credential{Token: "bearer-fresh", User: adminUser()},
	}
	store := newAuthStore(t, durable, identity)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Initialize(ctx)
	}()

	// Let the initializer claim its sequence and start verifying, then
	// complete a login before the verify reply arrives.
	for store.State().Status != domain.StatusLoading {
		runtime.Gosched()
	}

	if _, err := store.Login(ctx, "ada@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	close(gate)
	wg.Wait()

	state := store.State()
	if state.Status != domain.StatusAuthenticated {
		t.Fatalf("expected authenticated, got %s", state.Status)
	}
	if state.User.ID != "u-1" {
		t.Fatalf("stale initialize overwrote fresh login: got user %s", state.User.ID)
	}
	if state.Token != "bearer-fresh" {
		t.Fatalf("expected fresh token, got %s", state.Token)
	}

	token, err := durable.Get(ctx, port.KeyToken)
	if err != nil || token != "bearer-fresh" {
		t.Fatalf("expected fresh token persisted, got %q err=%v", token, err)
	}
}

func TestSubscribersObserveTransitionsInOrder(t *testing.T) {
	identity := &fakeIdentityProvider{
		loginCred: domain.Credential{Token: "bearer-new", User: adminUser()},
	}
	store := newAuthStore(t, memory.NewStore(), identity)

	var observed []domain.AuthStatus
	unsubscribe := store.Subscribe(func(state domain.AuthState) {
		observed = append(observed, state.Status)
	})
	defer unsubscribe()

	if _, err := store.Login(context.Background(), "ada@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	want := []domain.AuthStatus{domain.StatusLoading, domain.StatusAuthenticated}
	if len(observed) != len(want) {
		t.Fatalf("expected %d transitions, got %v", len(want), observed)
	}
	for i, status := range want {
		if observed[i] != status {
			t.Fatalf("transition %d: expected %s, got %s", i, status, observed[i])
		}
	}
}

func TestLogoutClearsImpersonationContext(t *testing.T) {
	durable := memory.NewStore()
	ctx := context.Background()
	_ = durable.Set(ctx, port.KeyImpersonation, `{"isImpersonating":true}`)

	identity := &fakeIdentityProvider{
		loginCred: domain.Credential{Token: "bearer-new", User: adminUser()},
	}
	store := newAuthStore(t, durable, identity)

	if _, err := store.Login(ctx, "ada@example.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	store.Logout(ctx)

	if _, err := durable.Get(ctx, port.KeyImpersonation); err == nil {
		t.Fatalf("expected impersonation context cleared on logout")
	}
}
