package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/core/port"
	"github.com/arklim/dispatch-console-auth/internal/infra/config"
)

const schemaVersion = "1.0"

// AuditPublisher implements port.AuditPublisher using Kafka.
type AuditPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewAuditPublisher constructs a Kafka-backed audit event publisher.
func NewAuditPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *AuditPublisher {
	return &AuditPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	TabID     string           `json:"tab_id,omitempty"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *AuditPublisher) publish(ctx context.Context, eventID, eventType, tabID, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		TabID:     tabID,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishLoginSucceeded publishes console.auth.login events.
func (p *AuditPublisher) PublishLoginSucceeded(ctx context.Context, event domain.LoginSucceededEvent) error {
	payload := struct {
		UserID   string         `json:"user_id"`
		Role     string         `json:"role"`
		LoggedAt time.Time      `json:"logged_at"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{
		UserID:   event.UserID,
		Role:     event.Role,
		LoggedAt: event.At.UTC(),
		Metadata: event.Metadata,
	}

	return p.publish(ctx, event.EventID, "console.auth.login", event.TabID, event.UserID, event.At, payload)
}

// PublishLoggedOut publishes console.auth.logout events.
func (p *AuditPublisher) PublishLoggedOut(ctx context.Context, event domain.LoggedOutEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		LoggedOut time.Time      `json:"logged_out_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		LoggedOut: event.At.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "console.auth.logout", event.TabID, event.UserID, event.At, payload)
}

// PublishCredentialEvicted publishes console.auth.evicted events.
func (p *AuditPublisher) PublishCredentialEvicted(ctx context.Context, event domain.CredentialEvictedEvent) error {
	payload := struct {
		Reason    string         `json:"reason"`
		EvictedAt time.Time      `json:"evicted_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		Reason:    event.Reason,
		EvictedAt: event.At.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "console.auth.evicted", event.TabID, "", event.At, payload)
}

// PublishImpersonationStarted publishes console.impersonation.started events.
func (p *AuditPublisher) PublishImpersonationStarted(ctx context.Context, event domain.ImpersonationStartedEvent) error {
	payload := struct {
		ActorID    string         `json:"actor_id"`
		TargetID   string         `json:"target_id"`
		TargetRole string         `json:"target_role"`
		StartedAt  time.Time      `json:"started_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		ActorID:    event.ActorID,
		TargetID:   event.TargetID,
		TargetRole: event.TargetRole,
		StartedAt:  event.At.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "console.impersonation.started", event.TabID, event.ActorID, event.At, payload)
}

// PublishImpersonationEnded publishes console.impersonation.ended events.
func (p *AuditPublisher) PublishImpersonationEnded(ctx context.Context, event domain.ImpersonationEndedEvent) error {
	payload := struct {
		ActorID  string         `json:"actor_id"`
		TargetID string         `json:"target_id"`
		Graceful bool           `json:"graceful"`
		EndedAt  time.Time      `json:"ended_at"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}{
		ActorID:  event.ActorID,
		TargetID: event.TargetID,
		Graceful: event.Graceful,
		EndedAt:  event.At.UTC(),
		Metadata: event.Metadata,
	}

	return p.publish(ctx, event.EventID, "console.impersonation.ended", event.TabID, event.ActorID, event.At, payload)
}

var _ port.AuditPublisher = (*AuditPublisher)(nil)
