package port

import (
	"context"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
)

// IdentityProvider is the external authentication authority the console
// consumes. Failures are classified into domain.ProviderError kinds at this
// boundary so callers never branch on provider-specific error shapes.
type IdentityProvider interface {
	// CreateAccount registers a credential pair and returns the new principal.
	// A duplicate email yields ProviderErrDuplicateEmail.
	CreateAccount(ctx context.Context, email, password string) (domain.Principal, error)
	// SignIn exchanges credentials for a principal. Unknown emails and wrong
	// passwords both yield ProviderErrInvalidCredential.
	SignIn(ctx context.Context, email, password string) (domain.Principal, error)
	// SignOut invalidates provider-side state for the principal, if any.
	SignOut(ctx context.Context, principalID string) error
	// GetPrincipal resolves a principal by id for session restoration checks.
	GetPrincipal(ctx context.Context, principalID string) (domain.Principal, error)

	// SendVerificationEmail issues a one-time verification code and dispatches
	// it out of band, linking back to redirectURL.
	SendVerificationEmail(ctx context.Context, principalID, redirectURL string) error
	// ApplyActionCode redeems a verification code, marking the email verified.
	ApplyActionCode(ctx context.Context, code string) error

	// SendPasswordResetEmail issues a one-time reset code for the email and
	// dispatches it out of band, linking back to redirectURL.
	SendPasswordResetEmail(ctx context.Context, email, redirectURL string) error
	// ConfirmPasswordReset redeems a reset code and replaces the password.
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
}

// Mailer delivers out-of-band messages carrying one-time action links.
type Mailer interface {
	SendActionLink(ctx context.Context, email, mode, link string) error
}
