package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs console.account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	payload := map[string]any{
		"email":         logger.MaskEmail(event.Email),
		"role":          event.Role,
		"registered_at": event.RegisteredAt,
		"registered_by": event.RegisteredBy,
	}
	p.logEvent(topicAccountRegistered, event.AccountID, event.RegisteredAt, payload)
	return nil
}

// PublishLoginFailed logs console.login.failed events.
func (p *StubPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	payload := map[string]any{
		"email":           logger.MaskEmail(event.Email),
		"failed_attempts": event.FailedAttempts,
	}
	p.logEvent(topicLoginFailed, event.AccountID, event.At, payload)
	return nil
}

// PublishAccountLocked logs console.account.locked events.
func (p *StubPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	payload := map[string]any{
		"email":                 logger.MaskEmail(event.Email),
		"lock_until":            event.LockUntil,
		"lockout_count":         event.LockoutCount,
		"admin_unlock_required": event.AdminUnlockRequired,
	}
	p.logEvent(topicAccountLocked, event.AccountID, event.LockedAt, payload)
	return nil
}

// PublishAccountUnlocked logs console.account.unlocked events.
func (p *StubPublisher) PublishAccountUnlocked(_ context.Context, event domain.AccountUnlockedEvent) error {
	payload := map[string]any{
		"unlocked_by": event.UnlockedBy,
		"automatic":   event.Automatic,
	}
	p.logEvent(topicAccountUnlocked, event.AccountID, event.UnlockedAt, payload)
	return nil
}

// PublishPasswordResetRequested logs console.password.reset_requested events.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := map[string]any{
		"masked_destination": event.MaskedDestination,
		"expires_at":         event.ExpiresAt,
	}
	p.logEvent(topicPasswordResetRequested, event.AccountID, event.RequestedAt, payload)
	return nil
}

// PublishRoleChanged logs console.account.role_changed events.
func (p *StubPublisher) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	payload := map[string]any{
		"old_role":   event.OldRole,
		"new_role":   event.NewRole,
		"changed_by": event.ChangedBy,
	}
	p.logEvent(topicRoleChanged, event.AccountID, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
