package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/infra/config"
	"github.com/prabodhahdev/login-signup/internal/infra/logger"
	"github.com/prabodhahdev/login-signup/internal/infra/security"
	"github.com/prabodhahdev/login-signup/internal/repository"
)

const actionCodeBytes = 32

// CredentialStore is the persistence surface the provider needs. Implemented
// by the PostgreSQL principal repository.
type CredentialStore interface {
	Create(ctx context.Context, principal PrincipalCredential) error
	GetByID(ctx context.Context, id string) (*PrincipalCredential, error)
	GetByEmail(ctx context.Context, email string) (*PrincipalCredential, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id string) error
}

// PrincipalCredential is the stored credential pair for a principal.
type PrincipalCredential struct {
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Provider is the first-party identity provider: credentials in PostgreSQL,
// one-time action codes in Redis, links delivered through a Mailer.
type Provider struct {
	creds  CredentialStore
	codes  port.ActionCodeStore
	hasher *security.PasswordHasher
	mailer port.Mailer
	links  config.LinkSettings
	log    *zap.Logger
}

// NewProvider wires the provider from its stores and link settings.
func NewProvider(creds CredentialStore, codes port.ActionCodeStore, hasher *security.PasswordHasher, mailer port.Mailer, links config.LinkSettings, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		creds:  creds,
		codes:  codes,
		hasher: hasher,
		mailer: mailer,
		links:  links,
		log:    log,
	}
}

// CreateAccount registers a credential pair and returns the new principal.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (domain.Principal, error) {
	hash, err := p.hasher.Hash(password)
	if err != nil {
		return domain.Principal{}, domain.NewProviderError(domain.ProviderErrOther, "could not process the password", err)
	}

	now := time.Now().UTC()
	credential := PrincipalCredential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := p.creds.Create(ctx, credential); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Principal{}, domain.NewProviderError(domain.ProviderErrDuplicateEmail, "an account with this email already exists", err)
		}
		return domain.Principal{}, domain.NewProviderError(domain.ProviderErrOther, "could not create the account", err)
	}

	return domain.Principal{ID: credential.ID, Email: credential.Email}, nil
}

// SignIn exchanges credentials for a principal. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (p *Provider) SignIn(ctx context.Context, email, password string) (domain.Principal, error) {
	credential, err := p.creds.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Principal{}, domain.NewProviderError(domain.ProviderErrInvalidCredential, "invalid email or password", err)
		}
		return domain.Principal{}, domain.NewProviderError(domain.ProviderErrOther, "could not verify the credentials", err)
	}

	ok, err := p.hasher.Verify(password, credential.PasswordHash)
	if err != nil {
		return domain.Principal{}, domain.NewProviderError(domain.ProviderErrOther, "could not verify the credentials", err)
	}
	if !ok {
		return domain.Principal{}, domain.NewProviderError(domain.ProviderErrInvalidCredential, "invalid email or password", nil)
	}

	return toPrincipal(credential), nil
}

// SignOut invalidates provider-side state for the principal. The provider is
// stateless between exchanges, so there is nothing to revoke.
func (p *Provider) SignOut(_ context.Context, _ string) error {
	return nil
}

// GetPrincipal resolves a principal by id for session restoration checks.
func (p *Provider) GetPrincipal(ctx context.Context, principalID string) (domain.Principal, error) {
	credential, err := p.creds.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Principal{}, domain.NewProviderError(domain.ProviderErrInvalidCredential, "unknown principal", err)
		}
		return domain.Principal{}, domain.NewProviderError(domain.ProviderErrOther, "could not load the principal", err)
	}

	return toPrincipal(credential), nil
}

// SendVerificationEmail issues a one-time verification code and mails the
// action link.
func (p *Provider) SendVerificationEmail(ctx context.Context, principalID, redirectURL string) error {
	credential, err := p.creds.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewProviderError(domain.ProviderErrInvalidCredential, "unknown principal", err)
		}
		return domain.NewProviderError(domain.ProviderErrOther, "could not load the principal", err)
	}

	return p.issueActionCode(ctx, port.ActionVerifyEmail, credential, redirectURL)
}

// ApplyActionCode redeems a verification code, marking the email verified.
func (p *Provider) ApplyActionCode(ctx context.Context, code string) error {
	record, err := p.redeem(ctx, port.ActionVerifyEmail, code)
	if err != nil {
		return err
	}

	if err := p.creds.MarkEmailVerified(ctx, record.PrincipalID); err != nil {
		return domain.NewProviderError(domain.ProviderErrOther, "could not mark the email verified", err)
	}

	if err := p.codes.Consume(ctx, port.ActionVerifyEmail, record.CodeHash); err != nil {
		return domain.NewProviderError(domain.ProviderErrInvalidActionCode, "the action code is invalid or has expired", err)
	}

	p.log.Info("email verified",
		zap.String("principal_id", record.PrincipalID),
		zap.String("email", logger.MaskEmail(record.Email)),
	)

	return nil
}

// SendPasswordResetEmail issues a one-time reset code for the email.
func (p *Provider) SendPasswordResetEmail(ctx context.Context, email, redirectURL string) error {
	credential, err := p.creds.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.NewProviderError(domain.ProviderErrInvalidCredential, "no account exists for this email", err)
		}
		return domain.NewProviderError(domain.ProviderErrOther, "could not load the principal", err)
	}

	return p.issueActionCode(ctx, port.ActionResetPassword, credential, redirectURL)
}

// ConfirmPasswordReset redeems a reset code and replaces the password.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	record, err := p.redeem(ctx, port.ActionResetPassword, code)
	if err != nil {
		return err
	}

	hash, err := p.hasher.Hash(newPassword)
	if err != nil {
		return domain.NewProviderError(domain.ProviderErrOther, "could not process the new password", err)
	}

	if err := p.creds.UpdatePassword(ctx, record.PrincipalID, hash); err != nil {
		return domain.NewProviderError(domain.ProviderErrOther, "could not update the password", err)
	}

	if err := p.codes.Consume(ctx, port.ActionResetPassword, record.CodeHash); err != nil {
		return domain.NewProviderError(domain.ProviderErrInvalidActionCode, "the action code is invalid or has expired", err)
	}

	p.log.Info("password reset confirmed",
		zap.String("principal_id", record.PrincipalID),
		zap.String("email", logger.MaskEmail(record.Email)),
	)

	return nil
}

func (p *Provider) issueActionCode(ctx context.Context, purpose string, credential *PrincipalCredential, redirectURL string) error {
	raw, err := security.GenerateSecureToken(actionCodeBytes)
	if err != nil {
		return domain.NewProviderError(domain.ProviderErrOther, "could not generate the action code", err)
	}

	now := time.Now().UTC()
	record := port.ActionCode{
		Purpose:     purpose,
		CodeHash:    security.HashToken(raw),
		PrincipalID: credential.ID,
		Email:       credential.Email,
		CreatedAt:   now,
		ExpiresAt:   now.Add(p.links.ActionCodeTTL),
	}

	if err := p.codes.Save(ctx, record, p.links.ActionCodeTTL); err != nil {
		return domain.NewProviderError(domain.ProviderErrOther, "could not store the action code", err)
	}

	link := p.actionLink(purpose, raw, redirectURL)
	if err := p.mailer.SendActionLink(ctx, credential.Email, purpose, link); err != nil {
		return domain.NewProviderError(domain.ProviderErrOther, "could not deliver the action email", err)
	}

	return nil
}

func (p *Provider) redeem(ctx context.Context, purpose, code string) (*port.ActionCode, error) {
	if code == "" {
		return nil, domain.NewProviderError(domain.ProviderErrInvalidActionCode, "the action code is invalid or has expired", nil)
	}

	record, err := p.codes.FindByHash(ctx, purpose, security.HashToken(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewProviderError(domain.ProviderErrInvalidActionCode, "the action code is invalid or has expired", err)
		}
		return nil, domain.NewProviderError(domain.ProviderErrOther, "could not load the action code", err)
	}

	if time.Now().After(record.ExpiresAt) {
		return nil, domain.NewProviderError(domain.ProviderErrInvalidActionCode, "the action code is invalid or has expired", nil)
	}

	return record, nil
}

// actionLink builds the browser destination carried in the email, matching
// the console's /action?mode=...&oobCode=... route.
func (p *Provider) actionLink(mode, code, redirectURL string) string {
	query := url.Values{}
	query.Set("mode", mode)
	query.Set("oobCode", code)
	if redirectURL != "" {
		query.Set("continueUrl", redirectURL)
	}

	return fmt.Sprintf("%s/action?%s", p.links.BaseURL, query.Encode())
}

func toPrincipal(credential *PrincipalCredential) domain.Principal {
	return domain.Principal{
		ID:            credential.ID,
		Email:         credential.Email,
		EmailVerified: credential.EmailVerified,
	}
}

var _ port.IdentityProvider = (*Provider)(nil)
