package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/infra/config"
	"github.com/prabodhahdev/login-signup/internal/infra/logger"
	"github.com/prabodhahdev/login-signup/internal/infra/security"
	"github.com/prabodhahdev/login-signup/internal/repository"
)

var (
	// ErrRoleNotAllowed indicates the caller may not assign the requested role.
	ErrRoleNotAllowed = errors.New("not allowed to assign this role")
	// ErrUnknownAccount indicates the target account does not exist.
	ErrUnknownAccount = errors.New("account not found")
)

// ProvisionInput carries the form values for admin-driven account creation.
type ProvisionInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Password  string
	Role      domain.Role
}

// AccountService covers the admin console's account management operations.
type AccountService struct {
	accounts port.AccountRepository
	provider port.IdentityProvider
	events   port.EventPublisher
	lockouts *LockoutService
	policy   *security.PasswordPolicy
	links    config.LinkSettings
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountService constructs an AccountService instance.
func NewAccountService(
	accounts port.AccountRepository,
	provider port.IdentityProvider,
	events port.EventPublisher,
	lockouts *LockoutService,
	policy *security.PasswordPolicy,
	links config.LinkSettings,
	log *zap.Logger,
) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	if policy == nil {
		policy = security.DefaultPasswordPolicy()
	}
	return &AccountService{
		accounts: accounts,
		provider: provider,
		events:   events,
		lockouts: lockouts,
		policy:   policy,
		links:    links,
		logger:   log,
		now:      time.Now,
	}
}

// List returns accounts matching the filter plus the unpaged total.
func (s *AccountService) List(ctx context.Context, filter port.AccountFilter) ([]domain.Account, int, error) {
	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	total, err := s.accounts.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	return accounts, total, nil
}

// Get loads a single account.
func (s *AccountService) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}

// canAssign encodes who may hand out which role: admins provision regular
// users, superadmins provision any role.
func canAssign(actor, target domain.Role) bool {
	switch actor {
	case domain.RoleSuperAdmin:
		return target.Valid()
	case domain.RoleAdmin:
		return target == domain.RoleUser
	default:
		return false
	}
}

// Provision creates an account on behalf of an admin. The new user still has
// to verify the email before logging in.
func (s *AccountService) Provision(ctx context.Context, actor domain.ConsoleSession, input ProvisionInput) (*domain.Account, error) {
	if !input.Role.Valid() {
		return nil, ErrRoleNotAllowed
	}
	if !canAssign(actor.Role, input.Role) {
		return nil, ErrRoleNotAllowed
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	errs := security.ValidateSignUp(security.SignUpFields{
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Phone:           input.Phone,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.Password,
	})
	if len(errs) == 0 {
		if fe := s.policy.Validate(input.Password, input.Email, input.FirstName, input.LastName); fe != nil {
			errs = append(errs, *fe)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	principal, err := s.provider.CreateAccount(ctx, input.Email, input.Password)
	if err != nil {
		if domain.ProviderErrorKindOf(err) == domain.ProviderErrDuplicateEmail {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:        principal.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Email:     input.Email,
		Role:      input.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account document: %w", err)
	}

	loginURL := s.links.BaseURL + s.links.LoginPath
	if err := s.provider.SendVerificationEmail(ctx, principal.ID, loginURL); err != nil {
		s.logger.Error("send verification email", zap.Error(err), zap.String("account_id", principal.ID))
	}

	// The admin set a temporary password; the reset link lets the new user
	// pick their own.
	resetURL := s.links.BaseURL + s.links.ResetPath
	if err := s.provider.SendPasswordResetEmail(ctx, input.Email, resetURL); err != nil {
		s.logger.Error("send password reset email", zap.Error(err), zap.String("account_id", principal.ID))
	}

	if s.events != nil {
		if err := s.events.PublishAccountRegistered(ctx, domain.AccountRegisteredEvent{
			AccountID:    account.ID,
			Email:        account.Email,
			Role:         account.Role,
			RegisteredAt: now,
			RegisteredBy: actor.AccountID,
		}); err != nil {
			s.logger.Warn("publish account registered event", zap.Error(err))
		}
	}

	s.logger.Info("account provisioned",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)),
		zap.String("role", string(account.Role)),
		zap.String("actor_id", actor.AccountID),
	)

	return &account, nil
}

// UpdateRole changes an account's role. Only superadmins may do this, and
// only within the assignable set.
func (s *AccountService) UpdateRole(ctx context.Context, actor domain.ConsoleSession, accountID string, newRole domain.Role) error {
	if actor.Role != domain.RoleSuperAdmin || !canAssign(actor.Role, newRole) {
		return ErrRoleNotAllowed
	}

	account, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Role == newRole {
		return nil
	}

	if err := s.accounts.UpdateRole(ctx, accountID, newRole); err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishRoleChanged(ctx, domain.RoleChangedEvent{
			AccountID: accountID,
			OldRole:   account.Role,
			NewRole:   newRole,
			ChangedBy: actor.AccountID,
			ChangedAt: s.now().UTC(),
		}); err != nil {
			s.logger.Warn("publish role changed event", zap.Error(err))
		}
	}

	s.logger.Info("role updated",
		zap.String("account_id", accountID),
		zap.String("old_role", string(account.Role)),
		zap.String("new_role", string(newRole)),
		zap.String("actor_id", actor.AccountID),
	)

	return nil
}

// Unlock clears all five lock fields at once. This is the only way out of an
// admin-required lock.
func (s *AccountService) Unlock(ctx context.Context, actor domain.ConsoleSession, accountID string) error {
	if _, err := s.Get(ctx, accountID); err != nil {
		return err
	}
	return s.lockouts.AdminUnlock(ctx, accountID, actor.AccountID)
}
