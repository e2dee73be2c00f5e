package port

import (
	"context"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
)

// AccountFilter narrows account listings for the admin console tables.
type AccountFilter struct {
	Role   domain.Role
	Locked *bool
	Limit  int
	Offset int
}

// AccountRepository exposes persistence behavior for account documents.
//
// The backing store offers per-document read-modify-write without
// transactions; concurrent writers against the same account can lose updates.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	Count(ctx context.Context, filter AccountFilter) (int, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error

	// UpdateLockState writes all five lock fields in one patch.
	UpdateLockState(ctx context.Context, id string, fields domain.LockFields) error
	// SetFailedAttempts overwrites only the failure counter.
	SetFailedAttempts(ctx context.Context, id string, attempts int) error
	// ClearTemporaryLock performs the automatic unlock patch: isLocked false,
	// failedAttempts zero, lockUntil null. Lockout count and the admin latch
	// are left untouched.
	ClearTemporaryLock(ctx context.Context, id string) error
	// ResetFailureCounters clears failedAttempts and lockUntil after a
	// successful login.
	ResetFailureCounters(ctx context.Context, id string) error
}
