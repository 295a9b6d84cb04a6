package port

import (
	"context"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
)

// IdentityProvider is the backend identity contract the session layer
// consumes. Tokens are opaque to the caller; all cryptographic validation
// happens on the other side of this interface.
type IdentityProvider interface {
	// Verify resolves the current user for a token, or fails when the token
	// is rejected or the backend is unreachable.
	Verify(ctx context.Context, token string) (domain.User, error)

	// Login exchanges credentials for a token and its confirmed profile.
	// Failures carry the backend's message unmodified.
	Login(ctx context.Context, email, password string) (domain.Credential, error)

	// StartImpersonation mints a credential for the target user. The backend
	// enforces that the caller is a super-admin.
	StartImpersonation(ctx context.Context, token, targetUserID string) (domain.Credential, error)

	// EndImpersonation re-mints the original super-admin's credential from an
	// impersonated token.
	EndImpersonation(ctx context.Context, token string) (domain.Credential, error)
}
