package usecase

import (
	"context"
	"errors"
	"fmt"
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
	// ErrAccountNotFound indicates no account exists for the email.
	ErrAccountNotFound = errors.New("no account exists for this email")
	// ErrInvalidActionCode indicates the reset code is invalid or expired.
	ErrInvalidActionCode = errors.New("the link is invalid or has expired")
)

// PasswordResetService drives the out-of-band password recovery flow.
type PasswordResetService struct {
	accounts port.AccountRepository
	provider port.IdentityProvider
	events   port.EventPublisher
	policy   *security.PasswordPolicy
	links    config.LinkSettings
	logger   *zap.Logger
	now      func() time.Time
}

// NewPasswordResetService constructs a PasswordResetService instance.
func NewPasswordResetService(
	accounts port.AccountRepository,
	provider port.IdentityProvider,
	events port.EventPublisher,
	policy *security.PasswordPolicy,
	links config.LinkSettings,
	log *zap.Logger,
) *PasswordResetService {
	if log == nil {
		log = zap.NewNop()
	}
	if policy == nil {
		policy = security.DefaultPasswordPolicy()
	}
	return &PasswordResetService{
		accounts: accounts,
		provider: provider,
		events:   events,
		policy:   policy,
		links:    links,
		logger:   log,
		now:      time.Now,
	}
}

// RequestReset checks the email belongs to a known account and triggers the
// reset email. The existence check deliberately gives a clear "not found"
// message instead of a silent success.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	if fe := security.ValidateEmail(email); fe != nil {
		return security.FieldErrors{*fe}
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("look up account: %w", err)
	}

	resetURL := s.links.BaseURL + s.links.ResetPath
	if err := s.provider.SendPasswordResetEmail(ctx, email, resetURL); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	s.publishRequested(ctx, account)

	s.logger.Info("password reset requested",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(email)),
	)

	return nil
}

// ConfirmReset validates the new password against the sign-up strength rule
// and redeems the one-time code.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, code, newPassword, confirmPassword string) error {
	var errs security.FieldErrors
	if fe := security.ValidatePassword(newPassword); fe != nil {
		errs = append(errs, *fe)
	} else if fe := s.policy.Validate(newPassword); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := security.ValidateConfirmPassword(newPassword, confirmPassword); fe != nil {
		errs = append(errs, *fe)
	}
	if len(errs) > 0 {
		return errs
	}

	if err := s.provider.ConfirmPasswordReset(ctx, code, newPassword); err != nil {
		if domain.ProviderErrorKindOf(err) == domain.ProviderErrInvalidActionCode {
			return ErrInvalidActionCode
		}
		return fmt.Errorf("confirm password reset: %w", err)
	}

	s.logger.Info("password reset confirmed")
	return nil
}

func (s *PasswordResetService) publishRequested(ctx context.Context, account *domain.Account) {
	if s.events == nil {
		return
	}
	now := s.now().UTC()
	if err := s.events.PublishPasswordResetRequested(ctx, domain.PasswordResetRequestedEvent{
		AccountID:         account.ID,
		MaskedDestination: logger.MaskEmail(account.Email),
		RequestedAt:       now,
		ExpiresAt:         now.Add(s.links.ActionCodeTTL),
	}); err != nil {
		s.logger.Warn("publish password reset requested event", zap.Error(err))
	}
}
