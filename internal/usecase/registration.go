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
)

// ErrEmailTaken indicates an account already exists for the email.
var ErrEmailTaken = errors.New("an account with this email already exists")

// RegisterInput carries the raw sign-up form values.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Phone           string
	Email           string
	Password        string
	ConfirmPassword string
}

// RegisterResult reports the created account. No session is established:
// the user must verify the email and then log in.
type RegisterResult struct {
	AccountID string
	Email     string
}

// RegistrationService drives the sign-up flow.
type RegistrationService struct {
	accounts port.AccountRepository
	provider port.IdentityProvider
	events   port.EventPublisher
	policy   *security.PasswordPolicy
	links    config.LinkSettings
	logger   *zap.Logger
	now      func() time.Time
}

// NewRegistrationService constructs a RegistrationService instance.
func NewRegistrationService(
	accounts port.AccountRepository,
	provider port.IdentityProvider,
	events port.EventPublisher,
	policy *security.PasswordPolicy,
	links config.LinkSettings,
	log *zap.Logger,
) *RegistrationService {
	if log == nil {
		log = zap.NewNop()
	}
	if policy == nil {
		policy = security.DefaultPasswordPolicy()
	}
	return &RegistrationService{
		accounts: accounts,
		provider: provider,
		events:   events,
		policy:   policy,
		links:    links,
		logger:   log,
		now:      time.Now,
	}
}

// Register validates every field, creates the identity and the account
// document with zeroed lock fields, and triggers the verification email.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	errs := security.ValidateSignUp(security.SignUpFields{
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Phone:           input.Phone,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
	})
	if len(errs) == 0 {
		if fe := s.policy.Validate(input.Password, input.Email, input.FirstName, input.LastName); fe != nil {
			errs = append(errs, *fe)
		}
	}
	if len(errs) > 0 {
		return RegisterResult{}, errs
	}

	principal, err := s.provider.CreateAccount(ctx, input.Email, input.Password)
	if err != nil {
		if domain.ProviderErrorKindOf(err) == domain.ProviderErrDuplicateEmail {
			return RegisterResult{}, ErrEmailTaken
		}
		return RegisterResult{}, fmt.Errorf("create identity: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:        principal.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Email:     input.Email,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return RegisterResult{}, fmt.Errorf("create account document: %w", err)
	}

	loginURL := s.links.BaseURL + s.links.LoginPath
	if err := s.provider.SendVerificationEmail(ctx, principal.ID, loginURL); err != nil {
		// The account exists; the user can request another email from the
		// login screen. Surface the dispatch problem but keep the account.
		s.logger.Error("send verification email", zap.Error(err), zap.String("account_id", principal.ID))
	}

	s.publishRegistered(ctx, account)

	s.logger.Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)),
	)

	return RegisterResult{AccountID: account.ID, Email: account.Email}, nil
}

// ResendVerification triggers another verification email for an unverified
// principal.
func (s *RegistrationService) ResendVerification(ctx context.Context, accountID string) error {
	loginURL := s.links.BaseURL + s.links.LoginPath
	if err := s.provider.SendVerificationEmail(ctx, accountID, loginURL); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

func (s *RegistrationService) publishRegistered(ctx context.Context, account domain.Account) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAccountRegistered(ctx, domain.AccountRegisteredEvent{
		AccountID:    account.ID,
		Email:        account.Email,
		Role:         account.Role,
		RegisteredAt: account.CreatedAt,
	}); err != nil {
		s.logger.Warn("publish account registered event", zap.Error(err))
	}
}
