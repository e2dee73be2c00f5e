package domain

import "time"

// AccountRegisteredEvent represents the payload for console.account.registered messages.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    string
	Email        string
	Role         Role
	RegisteredAt time.Time
	RegisteredBy string
	Metadata     map[string]any
}

// LoginFailedEvent represents the payload for console.login.failed messages.
type LoginFailedEvent struct {
	EventID        string
	AccountID      string
	Email          string
	FailedAttempts int
	At             time.Time
	IPAddress      *string
	Metadata       map[string]any
}

// AccountLockedEvent represents the payload for console.account.locked messages.
type AccountLockedEvent struct {
	EventID             string
	AccountID           string
	Email               string
	LockUntil           time.Time
	LockoutCount        int
	AdminUnlockRequired bool
	LockedAt            time.Time
	Metadata            map[string]any
}

// AccountUnlockedEvent represents the payload for console.account.unlocked messages.
type AccountUnlockedEvent struct {
	EventID    string
	AccountID  string
	UnlockedAt time.Time
	UnlockedBy string
	Automatic  bool
	Metadata   map[string]any
}

// PasswordResetRequestedEvent represents the payload for console.password.reset_requested messages.
type PasswordResetRequestedEvent struct {
	EventID           string
	AccountID         string
	MaskedDestination string
	RequestedAt       time.Time
	ExpiresAt         time.Time
	Metadata          map[string]any
}

// RoleChangedEvent represents the payload for console.account.role_changed messages.
type RoleChangedEvent struct {
	EventID   string
	AccountID string
	OldRole   Role
	NewRole   Role
	ChangedBy string
	ChangedAt time.Time
	Metadata  map[string]any
}
