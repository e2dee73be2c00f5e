package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/infra/config"
	"github.com/prabodhahdev/login-signup/internal/infra/logger"
	"github.com/prabodhahdev/login-signup/internal/infra/security"
	"github.com/prabodhahdev/login-signup/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailNotVerified indicates the account exists but its email is unverified.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrTooManyRequests indicates the identity provider throttled the attempt.
	ErrTooManyRequests = errors.New("too many attempts, try again later")
	// ErrSessionExpired indicates the session is missing or no longer active.
	ErrSessionExpired = errors.New("session expired")
)

// SignInInput carries the raw login form values.
type SignInInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// SignInResult is the established session plus its signed cookie value and
// the role-based destination.
type SignInResult struct {
	Session      domain.ConsoleSession
	Token        string
	RedirectPath string
}

// AuthService drives sign-in, sign-out, and session restoration.
type AuthService struct {
	cfg      config.SessionSettings
	accounts port.AccountRepository
	provider port.IdentityProvider
	sessions port.SessionStore
	lockouts *LockoutService
	codec    *security.SessionTokenCodec
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	cfg config.SessionSettings,
	accounts port.AccountRepository,
	provider port.IdentityProvider,
	sessions port.SessionStore,
	lockouts *LockoutService,
	codec *security.SessionTokenCodec,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		cfg:      cfg,
		accounts: accounts,
		provider: provider,
		sessions: sessions,
		lockouts: lockouts,
		codec:    codec,
		logger:   log,
		now:      time.Now,
	}
}

// SignIn authenticates the credentials and establishes a session.
//
// The lock check runs before the credential exchange so a locked account is
// rejected without touching the identity provider; the failure recording runs
// after the provider's rejection so the counter reflects genuine bad
// credentials. Unknown emails skip both, which keeps lockout state from
// becoming an account-enumeration side channel.
func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (SignInResult, error) {
	if errs := security.ValidateSignIn(input.Email, input.Password); len(errs) > 0 {
		return SignInResult{}, errs
	}

	account, err := s.accounts.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return SignInResult{}, fmt.Errorf("look up account: %w", err)
	}

	if account != nil {
		status, err := s.lockouts.evaluate(ctx, account)
		if err != nil {
			return SignInResult{}, err
		}
		if lockErr := status.Err(); lockErr != nil {
			return SignInResult{}, lockErr
		}
	}

	principal, err := s.provider.SignIn(ctx, input.Email, input.Password)
	if err != nil {
		return SignInResult{}, s.classifySignInFailure(ctx, account, err)
	}

	if !principal.EmailVerified {
		return SignInResult{}, ErrEmailNotVerified
	}

	if account == nil {
		// Provider knows the principal but the account document is missing;
		// treat as invalid rather than half-provisioning a session.
		s.logger.Warn("principal without account document", zap.String("principal_id", principal.ID))
		return SignInResult{}, ErrInvalidCredentials
	}

	if err := s.accounts.ResetFailureCounters(ctx, account.ID); err != nil {
		return SignInResult{}, fmt.Errorf("reset failure counters: %w", err)
	}

	session, token, err := s.establishSession(ctx, account, input.RememberMe)
	if err != nil {
		return SignInResult{}, err
	}

	s.logger.Info("sign-in succeeded",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)),
		zap.String("role", string(account.Role)),
		zap.Bool("remember_me", input.RememberMe),
	)

	return SignInResult{
		Session:      session,
		Token:        token,
		RedirectPath: account.Role.HomePath(),
	}, nil
}

func (s *AuthService) classifySignInFailure(ctx context.Context, account *domain.Account, err error) error {
	switch domain.ProviderErrorKindOf(err) {
	case domain.ProviderErrRateLimited:
		return ErrTooManyRequests
	case domain.ProviderErrInvalidCredential:
		if account != nil {
			outcome, recErr := s.lockouts.RecordFailedAttempt(ctx, account.ID)
			if recErr != nil {
				s.logger.Error("record failed attempt", zap.Error(recErr))
				return ErrInvalidCredentials
			}
			if outcome.Locked {
				return &LockedError{
					AdminUnlockRequired: outcome.AdminUnlockRequired,
					RetryAt:             outcome.LockUntil,
				}
			}
		}
		return ErrInvalidCredentials
	default:
		// Any other provider failure surfaces its own message.
		return err
	}
}

func (s *AuthService) establishSession(ctx context.Context, account *domain.Account, rememberMe bool) (domain.ConsoleSession, string, error) {
	scope := domain.ScopeSessionOnly
	ttl := s.cfg.SessionTTL
	if rememberMe {
		scope = domain.ScopeDurable
		ttl = s.cfg.DurableTTL
	}

	now := s.now().UTC()
	session := domain.ConsoleSession{
		ID:         uuid.NewString(),
		AccountID:  account.ID,
		Email:      account.Email,
		Role:       account.Role,
		IsLoggedIn: true,
		Scope:      scope,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}

	if err := s.sessions.Put(ctx, session); err != nil {
		return domain.ConsoleSession{}, "", fmt.Errorf("store session: %w", err)
	}

	token, err := s.codec.Issue(session.ID, scope, ttl)
	if err != nil {
		return domain.ConsoleSession{}, "", fmt.Errorf("issue session token: %w", err)
	}

	return session, token, nil
}

// RestoreSession resolves a signed cookie value back to an active session.
// The principal is re-checked against the identity provider so a deleted
// credential invalidates every outstanding session.
func (s *AuthService) RestoreSession(ctx context.Context, tokenValue string) (*domain.ConsoleSession, error) {
	sessionID, _, err := s.codec.Verify(tokenValue)
	if err != nil {
		return nil, ErrSessionExpired
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if !session.IsActive(s.now()) {
		return nil, ErrSessionExpired
	}

	if _, err := s.provider.GetPrincipal(ctx, session.AccountID); err != nil {
		return nil, ErrSessionExpired
	}

	return session, nil
}

// SignOut destroys the session on both sides.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load session: %w", err)
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if err := s.provider.SignOut(ctx, session.AccountID); err != nil {
		s.logger.Warn("provider sign-out", zap.Error(err))
	}

	s.logger.Info("sign-out", zap.String("account_id", session.AccountID))
	return nil
}
