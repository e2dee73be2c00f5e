package domain

import "time"

// Role enumerates the access levels an account can hold.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// HomePath returns the dashboard destination for the role after login.
func (r Role) HomePath() string {
	switch r {
	case RoleSuperAdmin:
		return "/superadmin-dashboard"
	case RoleAdmin:
		return "/admin-dashboard"
	default:
		return "/dashboard"
	}
}

// LockState describes the account's position in the lockout state machine.
type LockState string

const (
	LockStateOpen        LockState = "open"
	LockStateLockedAuto  LockState = "locked_auto"
	LockStateLockedAdmin LockState = "locked_admin"
)

// Account mirrors the persisted account document in the accounts table.
type Account struct {
	ID                  string
	FirstName           string
	LastName            string
	Phone               string
	Email               string
	Role                Role
	FailedAttempts      int
	IsLocked            bool
	LockUntil           *time.Time
	LockoutCount        int
	AdminUnlockRequired bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// LockState derives the state-machine position from the lock fields.
func (a Account) LockState() LockState {
	if !a.IsLocked {
		return LockStateOpen
	}
	if a.AdminUnlockRequired {
		return LockStateLockedAdmin
	}
	return LockStateLockedAuto
}

// AutoUnlockDue reports whether the temporary lock window has elapsed and the
// account is eligible for automatic unlock at the supplied moment.
func (a Account) AutoUnlockDue(at time.Time) bool {
	if !a.IsLocked || a.AdminUnlockRequired {
		return false
	}
	return a.LockUntil != nil && at.After(*a.LockUntil)
}

// LockFields groups the five fields an admin unlock clears together.
type LockFields struct {
	FailedAttempts      int
	IsLocked            bool
	LockUntil           *time.Time
	LockoutCount        int
	AdminUnlockRequired bool
}

// ClearedLockFields returns the zero state the manual admin unlock writes.
func ClearedLockFields() LockFields {
	return LockFields{}
}
