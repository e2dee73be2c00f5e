package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/infra/config"
)

const schemaVersion = "1.0"

// Event types emitted by the console.
const (
	topicAccountRegistered      = "console.account.registered"
	topicLoginFailed            = "console.login.failed"
	topicAccountLocked          = "console.account.locked"
	topicAccountUnlocked        = "console.account.unlocked"
	topicPasswordResetRequested = "console.password.reset_requested"
	topicRoleChanged            = "console.account.role_changed"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	AccountID string           `json:"account_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, accountID string, ts time.Time, payload any) error {
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

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: accountID,
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

// PublishAccountRegistered publishes console.account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		AccountID    string         `json:"account_id"`
		Email        string         `json:"email"`
		Role         string         `json:"role"`
		RegisteredAt time.Time      `json:"registered_at"`
		RegisteredBy string         `json:"registered_by,omitempty"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:    event.AccountID,
		Email:        event.Email,
		Role:         string(event.Role),
		RegisteredAt: event.RegisteredAt.UTC(),
		RegisteredBy: event.RegisteredBy,
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicAccountRegistered, event.AccountID, event.RegisteredAt, payload)
}

// PublishLoginFailed publishes console.login.failed events.
func (p *EventPublisher) PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error {
	payload := struct {
		AccountID      string         `json:"account_id"`
		Email          string         `json:"email"`
		FailedAttempts int            `json:"failed_attempts"`
		At             time.Time      `json:"at"`
		IPAddress      *string        `json:"ip_address,omitempty"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:      event.AccountID,
		Email:          event.Email,
		FailedAttempts: event.FailedAttempts,
		At:             event.At.UTC(),
		IPAddress:      event.IPAddress,
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicLoginFailed, event.AccountID, event.At, payload)
}

// PublishAccountLocked publishes console.account.locked events.
func (p *EventPublisher) PublishAccountLocked(ctx context.Context, event domain.AccountLockedEvent) error {
	payload := struct {
		AccountID           string         `json:"account_id"`
		Email               string         `json:"email"`
		LockUntil           time.Time      `json:"lock_until"`
		LockoutCount        int            `json:"lockout_count"`
		AdminUnlockRequired bool           `json:"admin_unlock_required"`
		LockedAt            time.Time      `json:"locked_at"`
		Metadata            map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:           event.AccountID,
		Email:               event.Email,
		LockUntil:           event.LockUntil.UTC(),
		LockoutCount:        event.LockoutCount,
		AdminUnlockRequired: event.AdminUnlockRequired,
		LockedAt:            event.LockedAt.UTC(),
		Metadata:            event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicAccountLocked, event.AccountID, event.LockedAt, payload)
}

// PublishAccountUnlocked publishes console.account.unlocked events.
func (p *EventPublisher) PublishAccountUnlocked(ctx context.Context, event domain.AccountUnlockedEvent) error {
	payload := struct {
		AccountID  string         `json:"account_id"`
		UnlockedAt time.Time      `json:"unlocked_at"`
		UnlockedBy string         `json:"unlocked_by,omitempty"`
		Automatic  bool           `json:"automatic"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:  event.AccountID,
		UnlockedAt: event.UnlockedAt.UTC(),
		UnlockedBy: event.UnlockedBy,
		Automatic:  event.Automatic,
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicAccountUnlocked, event.AccountID, event.UnlockedAt, payload)
}

// PublishPasswordResetRequested publishes console.password.reset_requested events.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		AccountID         string         `json:"account_id"`
		MaskedDestination string         `json:"masked_destination"`
		RequestedAt       time.Time      `json:"requested_at"`
		ExpiresAt         time.Time      `json:"expires_at"`
		Metadata          map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:         event.AccountID,
		MaskedDestination: event.MaskedDestination,
		RequestedAt:       event.RequestedAt.UTC(),
		ExpiresAt:         event.ExpiresAt.UTC(),
		Metadata:          event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicPasswordResetRequested, event.AccountID, event.RequestedAt, payload)
}

// PublishRoleChanged publishes console.account.role_changed events.
func (p *EventPublisher) PublishRoleChanged(ctx context.Context, event domain.RoleChangedEvent) error {
	payload := struct {
		AccountID string         `json:"account_id"`
		OldRole   string         `json:"old_role"`
		NewRole   string         `json:"new_role"`
		ChangedBy string         `json:"changed_by,omitempty"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		AccountID: event.AccountID,
		OldRole:   string(event.OldRole),
		NewRole:   string(event.NewRole),
		ChangedBy: event.ChangedBy,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicRoleChanged, event.AccountID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
