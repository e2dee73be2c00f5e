package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/repository"
)

var accountColumns = []string{
	"id",
	"first_name",
	"last_name",
	"phone",
	"email",
	"role",
	"failed_attempts",
	"is_locked",
	"lock_until",
	"lockout_count",
	"admin_unlock_required",
	"created_at",
	"updated_at",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	stmt, args, err := r.builder.Insert("console.accounts").
		Columns(accountColumns...).
		Values(
			account.ID,
			account.FirstName,
			account.LastName,
			account.Phone,
			account.Email,
			account.Role,
			account.FailedAttempts,
			account.IsLocked,
			account.LockUntil,
			account.LockoutCount,
			account.AdminUnlockRequired,
			account.CreatedAt,
			account.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// FindByEmail retrieves an account by its email identifier.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

func (r *AccountRepository) getBy(ctx context.Context, cond squirrel.Eq) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From("console.accounts").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return account, nil
}

// List returns accounts matching the filter, newest first.
func (r *AccountRepository) List(ctx context.Context, filter port.AccountFilter) ([]domain.Account, error) {
	query := r.builder.
		Select(accountColumns...).
		From("console.accounts").
		OrderBy("created_at DESC")

	query = applyAccountFilter(query, filter)

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list accounts sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// Count returns how many accounts match the filter.
func (r *AccountRepository) Count(ctx context.Context, filter port.AccountFilter) (int, error) {
	query := r.builder.
		Select("COUNT(*)").
		From("console.accounts")

	query = applyAccountFilter(query, filter)

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count accounts sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}

	return count, nil
}

// UpdateRole changes only the role column.
func (r *AccountRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.patch(ctx, id, r.update().Set("role", role))
}

// UpdateLockState writes all five lock fields in one patch.
func (r *AccountRepository) UpdateLockState(ctx context.Context, id string, fields domain.LockFields) error {
	return r.patch(ctx, id, r.update().
		Set("failed_attempts", fields.FailedAttempts).
		Set("is_locked", fields.IsLocked).
		Set("lock_until", fields.LockUntil).
		Set("lockout_count", fields.LockoutCount).
		Set("admin_unlock_required", fields.AdminUnlockRequired))
}

// SetFailedAttempts overwrites only the failure counter.
func (r *AccountRepository) SetFailedAttempts(ctx context.Context, id string, attempts int) error {
	return r.patch(ctx, id, r.update().Set("failed_attempts", attempts))
}

// ClearTemporaryLock performs the automatic unlock patch.
func (r *AccountRepository) ClearTemporaryLock(ctx context.Context, id string) error {
	return r.patch(ctx, id, r.update().
		Set("is_locked", false).
		Set("failed_attempts", 0).
		Set("lock_until", nil))
}

// ResetFailureCounters clears residual counters after a successful login.
func (r *AccountRepository) ResetFailureCounters(ctx context.Context, id string) error {
	return r.patch(ctx, id, r.update().
		Set("failed_attempts", 0).
		Set("lock_until", nil))
}

func (r *AccountRepository) update() squirrel.UpdateBuilder {
	return r.builder.Update("console.accounts")
}

func (r *AccountRepository) patch(ctx context.Context, id string, update squirrel.UpdateBuilder) error {
	stmt, args, err := update.
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func applyAccountFilter(query squirrel.SelectBuilder, filter port.AccountFilter) squirrel.SelectBuilder {
	if filter.Role != "" {
		query = query.Where(squirrel.Eq{"role": filter.Role})
	}
	if filter.Locked != nil {
		query = query.Where(squirrel.Eq{"is_locked": *filter.Locked})
	}
	return query
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account   domain.Account
		lockUntil *time.Time
	)

	if err := row.Scan(
		&account.ID,
		&account.FirstName,
		&account.LastName,
		&account.Phone,
		&account.Email,
		&account.Role,
		&account.FailedAttempts,
		&account.IsLocked,
		&lockUntil,
		&account.LockoutCount,
		&account.AdminUnlockRequired,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}

	account.LockUntil = lockUntil
	return &account, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
