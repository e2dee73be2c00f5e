package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/prabodhahdev/login-signup/internal/repository"
)

// PrincipalRecord is an identity-provider credential row. It is deliberately
// separate from the account document: the provider owns the secret material,
// the account table owns profile and lockout state.
type PrincipalRecord struct {
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

var principalColumns = []string{
	"id",
	"email",
	"password_hash",
	"email_verified",
	"created_at",
	"updated_at",
}

// PrincipalRepository stores identity-provider credentials in PostgreSQL.
type PrincipalRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPrincipalRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewPrincipalRepository(exec pgExecutor) *PrincipalRepository {
	return &PrincipalRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new principal row.
func (r *PrincipalRepository) Create(ctx context.Context, principal PrincipalRecord) error {
	stmt, args, err := r.builder.Insert("console.principals").
		Columns(principalColumns...).
		Values(
			principal.ID,
			principal.Email,
			principal.PasswordHash,
			principal.EmailVerified,
			principal.CreatedAt,
			principal.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert principal sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert principal: %w", err)
	}

	return nil
}

// GetByID retrieves a principal by identifier.
func (r *PrincipalRepository) GetByID(ctx context.Context, id string) (*PrincipalRecord, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a principal by email.
func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*PrincipalRecord, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

func (r *PrincipalRepository) getBy(ctx context.Context, cond squirrel.Eq) (*PrincipalRecord, error) {
	stmt, args, err := r.builder.
		Select(principalColumns...).
		From("console.principals").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select principal sql: %w", err)
	}

	var principal PrincipalRecord
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&principal.ID,
		&principal.Email,
		&principal.PasswordHash,
		&principal.EmailVerified,
		&principal.CreatedAt,
		&principal.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan principal: %w", err)
	}

	return &principal, nil
}

// UpdatePassword replaces the stored password hash.
func (r *PrincipalRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.patch(ctx, id, r.builder.Update("console.principals").Set("password_hash", passwordHash))
}

// MarkEmailVerified flips the verification flag.
func (r *PrincipalRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.patch(ctx, id, r.builder.Update("console.principals").Set("email_verified", true))
}

func (r *PrincipalRepository) patch(ctx context.Context, id string, update squirrel.UpdateBuilder) error {
	stmt, args, err := update.
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update principal sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update principal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
