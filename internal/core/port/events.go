package port

import (
	"context"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
)

// AuditPublisher publishes auth lifecycle events to the message bus.
type AuditPublisher interface {
	PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error
	PublishLoggedOut(ctx context.Context, event domain.LoggedOutEvent) error
	PublishCredentialEvicted(ctx context.Context, event domain.CredentialEvictedEvent) error
	PublishImpersonationStarted(ctx context.Context, event domain.ImpersonationStartedEvent) error
	PublishImpersonationEnded(ctx context.Context, event domain.ImpersonationEndedEvent) error
}
