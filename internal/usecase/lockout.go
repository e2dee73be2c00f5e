package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/infra/config"
)

const (
	msgTemporarilyLocked = "Account temporarily locked due to failed attempts. Try again later."
	msgAdminLocked       = "Account locked. Contact an administrator to unlock it."
)

// LockedError reports that an account is barred from attempting login.
type LockedError struct {
	AdminUnlockRequired bool
	RetryAt             *time.Time
}

// Error implements the error interface with the user-facing message.
func (e *LockedError) Error() string {
	if e == nil {
		return ""
	}
	if e.AdminUnlockRequired {
		return msgAdminLocked
	}
	return msgTemporarilyLocked
}

// LockStatus is the outcome of a lock check.
type LockStatus struct {
	Barred              bool
	AdminUnlockRequired bool
	RetryAt             *time.Time
}

// Err converts a barred status into a LockedError, or nil when open.
func (s LockStatus) Err() error {
	if !s.Barred {
		return nil
	}
	return &LockedError{AdminUnlockRequired: s.AdminUnlockRequired, RetryAt: s.RetryAt}
}

// FailureOutcome describes what recording a failed attempt did to the account.
type FailureOutcome struct {
	FailedAttempts      int
	Locked              bool
	AdminUnlockRequired bool
	LockUntil           *time.Time
	LockoutCount        int
}

// LockoutService drives the per-account lockout state machine. All decisions
// are derived from the persisted counters, never from in-memory state, so any
// instance behind the load balancer reaches the same verdict.
type LockoutService struct {
	cfg      config.LockoutSettings
	accounts port.AccountRepository
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewLockoutService constructs a LockoutService instance.
func NewLockoutService(cfg config.LockoutSettings, accounts port.AccountRepository, events port.EventPublisher, logger *zap.Logger) *LockoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LockoutService{
		cfg:      cfg,
		accounts: accounts,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckLockStatus reports whether the account may attempt login right now.
// The expired-window unlock happens lazily here, as a side effect of the
// check, so no background sweeper is needed.
func (s *LockoutService) CheckLockStatus(ctx context.Context, accountID string) (LockStatus, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return LockStatus{}, fmt.Errorf("load account: %w", err)
	}

	return s.evaluate(ctx, account)
}

func (s *LockoutService) evaluate(ctx context.Context, account *domain.Account) (LockStatus, error) {
	if !account.IsLocked {
		return LockStatus{}, nil
	}

	now := s.now()

	if account.AutoUnlockDue(now) {
		if err := s.accounts.ClearTemporaryLock(ctx, account.ID); err != nil {
			return LockStatus{}, fmt.Errorf("clear temporary lock: %w", err)
		}

		s.publishUnlocked(ctx, account.ID, "", true)
		s.logger.Info("account auto-unlocked", zap.String("account_id", account.ID))

		return LockStatus{}, nil
	}

	status := LockStatus{
		Barred:              true,
		AdminUnlockRequired: account.AdminUnlockRequired,
	}
	if !account.AdminUnlockRequired && account.LockUntil != nil {
		retryAt := *account.LockUntil
		status.RetryAt = &retryAt
	}

	return status, nil
}

// RecordFailedAttempt increments the failure counter after the identity
// provider rejected credentials for a known account, locking the account when
// the threshold is reached. Reaching the daily lockout budget in the same
// mutation latches the admin-unlock requirement, so an account can go from
// open to admin-locked in one step.
func (s *LockoutService) RecordFailedAttempt(ctx context.Context, accountID string) (FailureOutcome, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return FailureOutcome{}, fmt.Errorf("load account: %w", err)
	}

	now := s.now()
	attempts := account.FailedAttempts + 1

	if attempts < s.cfg.MaxFailedAttempts {
		if err := s.accounts.SetFailedAttempts(ctx, account.ID, attempts); err != nil {
			return FailureOutcome{}, fmt.Errorf("record failed attempt: %w", err)
		}

		s.publishLoginFailed(ctx, account, attempts, now)

		return FailureOutcome{
			FailedAttempts: attempts,
			LockoutCount:   account.LockoutCount,
		}, nil
	}

	lockUntil := now.Add(s.cfg.LockDuration)
	lockoutCount := account.LockoutCount + 1
	adminRequired := account.AdminUnlockRequired || lockoutCount >= s.cfg.MaxLockoutsPerDay

	fields := domain.LockFields{
		FailedAttempts:      0,
		IsLocked:            true,
		LockUntil:           &lockUntil,
		LockoutCount:        lockoutCount,
		AdminUnlockRequired: adminRequired,
	}

	if err := s.accounts.UpdateLockState(ctx, account.ID, fields); err != nil {
		return FailureOutcome{}, fmt.Errorf("lock account: %w", err)
	}

	s.publishLoginFailed(ctx, account, attempts, now)
	s.publishLocked(ctx, account, fields, now)

	s.logger.Warn("account locked",
		zap.String("account_id", account.ID),
		zap.Int("lockout_count", lockoutCount),
		zap.Bool("admin_unlock_required", adminRequired),
	)

	return FailureOutcome{
		FailedAttempts:      0,
		Locked:              true,
		AdminUnlockRequired: adminRequired,
		LockUntil:           &lockUntil,
		LockoutCount:        lockoutCount,
	}, nil
}

// AdminUnlock clears all five lock fields in a single write. This is the only
// path out of an admin-required lock.
func (s *LockoutService) AdminUnlock(ctx context.Context, accountID, actorID string) error {
	if err := s.accounts.UpdateLockState(ctx, accountID, domain.ClearedLockFields()); err != nil {
		return fmt.Errorf("admin unlock: %w", err)
	}

	s.publishUnlocked(ctx, accountID, actorID, false)
	s.logger.Info("account unlocked by admin",
		zap.String("account_id", accountID),
		zap.String("actor_id", actorID),
	)

	return nil
}

func (s *LockoutService) publishLoginFailed(ctx context.Context, account *domain.Account, attempts int, at time.Time) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLoginFailed(ctx, domain.LoginFailedEvent{
		AccountID:      account.ID,
		Email:          account.Email,
		FailedAttempts: attempts,
		At:             at,
	}); err != nil {
		s.logger.Warn("publish login failed event", zap.Error(err))
	}
}

func (s *LockoutService) publishLocked(ctx context.Context, account *domain.Account, fields domain.LockFields, at time.Time) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAccountLocked(ctx, domain.AccountLockedEvent{
		AccountID:           account.ID,
		Email:               account.Email,
		LockUntil:           *fields.LockUntil,
		LockoutCount:        fields.LockoutCount,
		AdminUnlockRequired: fields.AdminUnlockRequired,
		LockedAt:            at,
	}); err != nil {
		s.logger.Warn("publish account locked event", zap.Error(err))
	}
}

func (s *LockoutService) publishUnlocked(ctx context.Context, accountID, actorID string, automatic bool) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAccountUnlocked(ctx, domain.AccountUnlockedEvent{
		AccountID:  accountID,
		UnlockedAt: s.now(),
		UnlockedBy: actorID,
		Automatic:  automatic,
	}); err != nil {
		s.logger.Warn("publish account unlocked event", zap.Error(err))
	}
}
