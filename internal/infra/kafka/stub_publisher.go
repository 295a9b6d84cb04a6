package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly audit publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, tabID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("tab_id", tabID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishLoginSucceeded logs console.auth.login events.
func (p *StubPublisher) PublishLoginSucceeded(_ context.Context, event domain.LoginSucceededEvent) error {
	payload := map[string]any{
		"user_id":  event.UserID,
		"role":     event.Role,
		"metadata": event.Metadata,
	}
	p.logEvent("console.auth.login", event.TabID, event.At, payload)
	return nil
}

// PublishLoggedOut logs console.auth.logout events.
func (p *StubPublisher) PublishLoggedOut(_ context.Context, event domain.LoggedOutEvent) error {
	payload := map[string]any{
		"user_id":  event.UserID,
		"metadata": event.Metadata,
	}
	p.logEvent("console.auth.logout", event.TabID, event.At, payload)
	return nil
}

// PublishCredentialEvicted logs console.auth.evicted events.
func (p *StubPublisher) PublishCredentialEvicted(_ context.Context, event domain.CredentialEvictedEvent) error {
	payload := map[string]any{
		"reason":   event.Reason,
		"metadata": event.Metadata,
	}
	p.logEvent("console.auth.evicted", event.TabID, event.At, payload)
	return nil
}

// PublishImpersonationStarted logs console.impersonation.started events.
func (p *StubPublisher) PublishImpersonationStarted(_ context.Context, event domain.ImpersonationStartedEvent) error {
	payload := map[string]any{
		"actor_id":    event.ActorID,
		"target_id":   event.TargetID,
		"target_role": event.TargetRole,
		"metadata":    event.Metadata,
	}
	p.logEvent("console.impersonation.started", event.TabID, event.At, payload)
	return nil
}

// PublishImpersonationEnded logs console.impersonation.ended events.
func (p *StubPublisher) PublishImpersonationEnded(_ context.Context, event domain.ImpersonationEndedEvent) error {
	payload := map[string]any{
		"actor_id":  event.ActorID,
		"target_id": event.TargetID,
		"graceful":  event.Graceful,
		"metadata":  event.Metadata,
	}
	p.logEvent("console.impersonation.ended", event.TabID, event.At, payload)
	return nil
}

var _ port.AuditPublisher = (*StubPublisher)(nil)
