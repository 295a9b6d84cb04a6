package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
)

// fakeIdentityProvider scripts backend responses; optional gates let tests
// order the completion of concurrent calls deterministically.
type fakeIdentityProvider struct {
	mu sync.Mutex

	verifyUser domain.User
	verifyErr  error
	verifyGate chan struct{}

	loginCred domain.Credential
	loginErr  error

	startCred domain.Credential
	startErr  error

	endCred domain.Credential
	endErr  error

	verifyCalls int
	loginCalls  int
}

func (f *fakeIdentityProvider) Verify(ctx context.Context, token string) (domain.User, error) {
	f.mu.Lock()
	f.verifyCalls++
	gate := f.verifyGate
	user, err := f.verifyUser, f.verifyErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.User{}, ctx.Err()
		}
	}
	return user, err
}

func (f *fakeIdentityProvider) Login(ctx context.Context, email, password string) (domain.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	return f.loginCred, f.loginErr
}

func (f *fakeIdentityProvider) StartImpersonation(ctx context.Context, token, targetUserID string) (domain.Credential, error) {
	return f.startCred, f.startErr
}

func (f *fakeIdentityProvider) EndImpersonation(ctx context.Context, token string) (domain.Credential, error) {
	return f.endCred, f.endErr
}

// stubAuditPublisher records published events for assertions.
type stubAuditPublisher struct {
	mu      sync.Mutex
	logins  []domain.LoginSucceededEvent
	logouts []domain.LoggedOutEvent
	evicted []domain.CredentialEvictedEvent
	started []domain.ImpersonationStartedEvent
	ended   []domain.ImpersonationEndedEvent
}

func (s *stubAuditPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins = append(s.logins, event)
	return nil
}

func (s *stubAuditPublisher) PublishLoggedOut(_ context.Context, event domain.LoggedOutEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts = append(s.logouts, event)
	return nil
}

func (s *stubAuditPublisher) PublishCredentialEvicted(_ context.Context, event domain.CredentialEvictedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evicted = append(s.evicted, event)
	return nil
}

func (s *stubAuditPublisher) PublishImpersonationStarted(_ context.Context, event domain.ImpersonationStartedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, event)
	return nil
}

func (s *stubAuditPublisher) PublishImpersonationEnded(_ context.Context, event domain.ImpersonationEndedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = append(s.ended, event)
	return nil
}

var errBackendDown = errors.New("backend unreachable")
