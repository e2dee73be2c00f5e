package port

import (
	"context"
	"time"
)

// Action code purposes issued by the identity provider.
const (
	ActionVerifyEmail   = "verifyEmail"
	ActionResetPassword = "resetPassword"
)

// ActionCode is a stored one-time code record. Only the hash of the raw code
// is persisted; the raw value travels in the emailed link.
type ActionCode struct {
	Purpose     string
	CodeHash    string
	PrincipalID string
	Email       string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// ActionCodeStore persists one-time action codes with an expiry.
type ActionCodeStore interface {
	Save(ctx context.Context, code ActionCode, ttl time.Duration) error
	// FindByHash returns the record for the hashed code or repository.ErrNotFound.
	FindByHash(ctx context.Context, purpose, codeHash string) (*ActionCode, error)
	// Consume deletes the record, enforcing single use.
	Consume(ctx context.Context, purpose, codeHash string) error
}
