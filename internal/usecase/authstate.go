package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/core/port"
)

var (
	// ErrEmailRequired indicates login was attempted with an empty email.
	// Local validation; no network call is made.
	ErrEmailRequired = errors.New("email is required")
	// ErrPasswordRequired indicates login was attempted with an empty password.
	ErrPasswordRequired = errors.New("password is required")
)

// Subscriber receives every applied auth state transition, in order.
type Subscriber func(domain.AuthState)

// AuthStateStore is the single source of truth for the per-tab auth state.
// Resolutions are ordered by a monotonic call sequence: a slower call that
// started earlier can never overwrite the result of one that started later.
type AuthStateStore struct {
	mu      sync.Mutex
	state   domain.AuthState
	seq     uint64
	applied uint64
	subs    map[int]Subscriber
	nextSub int

	tabID    string
	durable  port.DurableStore
	identity port.IdentityProvider
	audit    port.AuditPublisher
	log      *zap.Logger
	now      func() time.Time
}

// NewAuthStateStore constructs the store in the Initializing status.
func NewAuthStateStore(tabID string, durable port.DurableStore, identity port.IdentityProvider, audit port.AuditPublisher, log *zap.Logger) *AuthStateStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthStateStore{
		state:    domain.AuthState{Status: domain.StatusInitializing},
		subs:     make(map[int]Subscriber),
		tabID:    tabID,
		durable:  durable,
		identity: identity,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// WithClock injects a custom clock (primarily for testing).
func (s *AuthStateStore) WithClock(now func() time.Time) *AuthStateStore {
	if now != nil {
		s.now = now
	}
	return s
}

// State returns a snapshot of the current auth state.
func (s *AuthStateStore) State() domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a subscriber for every subsequent transition and
// returns a function that removes it.
func (s *AuthStateStore) Subscribe(sub Subscriber) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// begin claims a sequence number for a new resolution flow.
func (s *AuthStateStore) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// resolve applies a state transition if its sequence has not been superseded.
// The optional effect runs under the same claim, so storage writes of a stale
// flow are discarded together with its state.
func (s *AuthStateStore) resolve(seq uint64, state domain.AuthState, effect func()) bool {
	s.mu.Lock()
	if seq < s.applied {
		s.mu.Unlock()
		return false
	}
	s.applied = seq
	if effect != nil {
		effect()
	}
	s.state = state
	subs := make([]Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(state)
	}
	return true
}

// Initialize reads the durable scope and resolves the tab's auth state,
// verifying a stored credential with the backend when one exists.
func (s *AuthStateStore) Initialize(ctx context.Context) domain.AuthState {
	seq := s.begin()

	cred, ok := s.readCredential(ctx)
	if !ok {
		s.resolve(seq, domain.Unauthenticated(), func() {
			s.clearCredentialLocked(ctx)
		})
		return s.State()
	}

	s.resolve(seq, domain.AuthState{Status: domain.StatusLoading}, nil)

	user, err := s.identity.Verify(ctx, cred.Token)
	if err != nil {
		// Token rejected or backend unreachable: evict silently; the login
		// screen is indistinguishable from "never logged in".
		applied := s.resolve(seq, domain.Unauthenticated(), func() {
			s.clearCredentialLocked(ctx)
		})
		if applied {
			s.publishEvicted(ctx, "verification_failed")
			s.log.Info("stored credential rejected", zap.Error(err))
		}
		return s.State()
	}

	confirmed := domain.Credential{Token: cred.Token, User: user}
	s.resolve(seq, domain.Authenticated(confirmed), func() {
		s.persistCredentialLocked(ctx, confirmed)
	})
	return s.State()
}

// Login validates inputs locally, then exchanges them with the backend. On
// success the resolved user is returned for routing; on failure the backend's
// error is surfaced unmodified and no persisted state changes.
func (s *AuthStateStore) Login(ctx context.Context, email, password string) (domain.User, error) {
	if email == "" {
		return domain.User{}, ErrEmailRequired
	}
	if password == "" {
		return domain.User{}, ErrPasswordRequired
	}

	seq := s.begin()
	s.resolve(seq, domain.AuthState{Status: domain.StatusLoading}, nil)

	cred, err := s.identity.Login(ctx, email, password)
	if err != nil {
		s.resolve(seq, domain.Unauthenticated(), nil)
		return domain.User{}, err
	}

	applied := s.resolve(seq, domain.Authenticated(cred), func() {
		s.persistCredentialLocked(ctx, cred)
	})
	if applied {
		s.publishLogin(ctx, cred.User)
	}

	return cred.User, nil
}

// Logout clears the durable scope, resolves Unauthenticated, and drops any
// active impersonation context.
func (s *AuthStateStore) Logout(ctx context.Context) {
	seq := s.begin()

	var userID string
	if current := s.State(); current.User != nil {
		userID = current.User.ID
	}

	applied := s.resolve(seq, domain.Unauthenticated(), func() {
		s.clearCredentialLocked(ctx)
		if err := s.durable.Delete(ctx, port.KeyImpersonation); err != nil {
			s.log.Warn("delete impersonation context", zap.Error(err))
		}
	})
	if applied && userID != "" {
		s.publishLogout(ctx, userID)
	}
}

// ApplyCredential persists and adopts a credential minted outside the login
// flow (impersonation enter/exit) as the authenticated state.
func (s *AuthStateStore) ApplyCredential(ctx context.Context, cred domain.Credential) {
	seq := s.begin()
	s.resolve(seq, domain.Authenticated(cred), func() {
		s.persistCredentialLocked(ctx, cred)
	})
}

func (s *AuthStateStore) readCredential(ctx context.Context) (domain.Credential, bool) {
	token, err := s.durable.Get(ctx, port.KeyToken)
	if err != nil {
		return domain.Credential{}, false
	}

	rawUser, err := s.durable.Get(ctx, port.KeyUser)
	if err != nil {
		return domain.Credential{}, false
	}

	user, err := domain.DecodeUser(rawUser)
	if err != nil {
		return domain.Credential{}, false
	}

	cred := domain.Credential{Token: token, User: user}
	if !cred.WellFormed() {
		return domain.Credential{}, false
	}
	return cred, true
}

// persistCredentialLocked writes both halves of the pair. Callers hold the
// store lock via resolve.
func (s *AuthStateStore) persistCredentialLocked(ctx context.Context, cred domain.Credential) {
	raw, err := domain.EncodeUser(cred.User)
	if err != nil {
		s.log.Warn("encode user", zap.Error(err))
		return
	}
	if err := s.durable.Set(ctx, port.KeyToken, cred.Token); err != nil {
		s.log.Warn("persist token", zap.Error(err))
	}
	if err := s.durable.Set(ctx, port.KeyUser, raw); err != nil {
		s.log.Warn("persist user", zap.Error(err))
	}
}

// clearCredentialLocked removes both halves of the pair together.
func (s *AuthStateStore) clearCredentialLocked(ctx context.Context) {
	if err := s.durable.Delete(ctx, port.KeyToken); err != nil {
		s.log.Warn("delete token", zap.Error(err))
	}
	if err := s.durable.Delete(ctx, port.KeyUser); err != nil {
		s.log.Warn("delete user", zap.Error(err))
	}
}

func (s *AuthStateStore) publishLogin(ctx context.Context, user domain.User) {
	if s.audit == nil {
		return
	}
	event := domain.LoginSucceededEvent{
		EventID: uuid.NewString(),
		TabID:   s.tabID,
		UserID:  user.ID,
		Role:    string(user.Role),
		At:      s.now().UTC(),
	}
	if err := s.audit.PublishLoginSucceeded(ctx, event); err != nil {
		s.log.Warn("publish login event", zap.Error(err))
	}
}

func (s *AuthStateStore) publishLogout(ctx context.Context, userID string) {
	if s.audit == nil {
		return
	}
	event := domain.LoggedOutEvent{
		EventID: uuid.NewString(),
		TabID:   s.tabID,
		UserID:  userID,
		At:      s.now().UTC(),
	}
	if err := s.audit.PublishLoggedOut(ctx, event); err != nil {
		s.log.Warn("publish logout event", zap.Error(err))
	}
}

func (s *AuthStateStore) publishEvicted(ctx context.Context, reason string) {
	if s.audit == nil {
		return
	}
	event := domain.CredentialEvictedEvent{
		EventID: uuid.NewString(),
		TabID:   s.tabID,
		Reason:  reason,
		At:      s.now().UTC(),
	}
	if err := s.audit.PublishCredentialEvicted(ctx, event); err != nil {
		s.log.Warn("publish eviction event", zap.Error(err))
	}
}
