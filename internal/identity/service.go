package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/core/port"
	"github.com/arklim/dispatch-console-auth/internal/infra/logger"
	"github.com/arklim/dispatch-console-auth/internal/repository"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike, so
	// the response does not reveal which half failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserDisabled indicates the account exists but may not sign in.
	ErrUserDisabled = errors.New("user account is disabled")
	// ErrImpersonationDenied indicates the caller may not impersonate the
	// requested target.
	ErrImpersonationDenied = errors.New("impersonation denied")
	// ErrNoImpersonation indicates a return was requested on a credential
	// that carries no actor marker.
	ErrNoImpersonation = errors.New("credential is not impersonated")
)

// Service is the reference identity backend. It owns credential verification,
// token minting, and the impersonation sub-protocol.
type Service struct {
	users  port.UserRepository
	tokens *TokenManager
	hasher *Hasher
	log    *zap.Logger
}

// NewService wires the backend over a user repository.
func NewService(users port.UserRepository, tokens *TokenManager, hasher *Hasher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, tokens: tokens, hasher: hasher, log: log}
}

// Login exchanges an email/password pair for a minted credential.
func (s *Service) Login(ctx context.Context, email, password string) (domain.Credential, error) {
	record, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Credential{}, ErrInvalidCredentials
		}
		return domain.Credential{}, fmt.Errorf("load user: %w", err)
	}

	if !record.Active {
		return domain.Credential{}, ErrUserDisabled
	}

	ok, err := s.hasher.Verify(password, record.PasswordHash)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.log.Info("login rejected", zap.String("email", logger.MaskEmail(email)))
		return domain.Credential{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Mint(record.User, "")
	if err != nil {
		return domain.Credential{}, err
	}

	s.log.Info("login succeeded",
		zap.String("user_id", record.User.ID),
		zap.String("role", string(record.User.Role)),
	)
	return domain.Credential{Token: token, User: record.User}, nil
}

// Verify checks a stored token and returns the current server-side view of
// its user, so stale profile copies are refreshed on every tab bootstrap.
func (s *Service) Verify(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return domain.User{}, err
	}

	record, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidToken
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if !record.Active {
		return domain.User{}, ErrUserDisabled
	}

	return record.User, nil
}

// StartImpersonation mints a credential for the target identity on behalf of
// the calling super-admin. The actor is recorded inside the token so the
// return flow can recover the original identity from the credential alone.
func (s *Service) StartImpersonation(ctx context.Context, token, targetUserID string) (domain.Credential, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return domain.Credential{}, err
	}
	if claims.Role != string(domain.RoleSuperAdmin) || claims.Actor != "" {
		return domain.Credential{}, ErrImpersonationDenied
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Credential{}, ErrImpersonationDenied
		}
		return domain.Credential{}, fmt.Errorf("load target: %w", err)
	}
	if target.User.Role == domain.RoleSuperAdmin || !target.Active {
		return domain.Credential{}, ErrImpersonationDenied
	}

	minted, err := s.tokens.Mint(target.User, claims.Subject)
	if err != nil {
		return domain.Credential{}, err
	}

	s.log.Info("impersonation credential minted",
		zap.String("actor_id", claims.Subject),
		zap.String("target_id", target.User.ID),
	)
	return domain.Credential{Token: minted, User: target.User}, nil
}

// EndImpersonation re-mints the original super-admin credential from the
// actor marker carried by the impersonated token.
func (s *Service) EndImpersonation(ctx context.Context, token string) (domain.Credential, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return domain.Credential{}, err
	}
	if claims.Actor == "" {
		return domain.Credential{}, ErrNoImpersonation
	}

	actor, err := s.users.GetByID(ctx, claims.Actor)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Credential{}, ErrInvalidToken
		}
		return domain.Credential{}, fmt.Errorf("load actor: %w", err)
	}
	if actor.User.Role != domain.RoleSuperAdmin || !actor.Active {
		return domain.Credential{}, ErrImpersonationDenied
	}

	minted, err := s.tokens.Mint(actor.User, "")
	if err != nil {
		return domain.Credential{}, err
	}

	s.log.Info("impersonation credential returned", zap.String("actor_id", actor.User.ID))
	return domain.Credential{Token: minted, User: actor.User}, nil
}

var _ port.IdentityProvider = (*Service)(nil)
