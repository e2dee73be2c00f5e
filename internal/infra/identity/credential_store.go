package identity

import (
	"context"

	"github.com/prabodhahdev/login-signup/internal/repository/postgres"
)

// PostgresCredentialStore adapts the principal repository to the provider's
// credential surface.
type PostgresCredentialStore struct {
	repo *postgres.PrincipalRepository
}

// NewPostgresCredentialStore wraps the repository.
func NewPostgresCredentialStore(repo *postgres.PrincipalRepository) *PostgresCredentialStore {
	return &PostgresCredentialStore{repo: repo}
}

func (s *PostgresCredentialStore) Create(ctx context.Context, principal PrincipalCredential) error {
	return s.repo.Create(ctx, postgres.PrincipalRecord{
		ID:            principal.ID,
		Email:         principal.Email,
		PasswordHash:  principal.PasswordHash,
		EmailVerified: principal.EmailVerified,
		CreatedAt:     principal.CreatedAt,
		UpdatedAt:     principal.UpdatedAt,
	})
}

func (s *PostgresCredentialStore) GetByID(ctx context.Context, id string) (*PrincipalCredential, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromRecord(record), nil
}

func (s *PostgresCredentialStore) GetByEmail(ctx context.Context, email string) (*PrincipalCredential, error) {
	record, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return fromRecord(record), nil
}

func (s *PostgresCredentialStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *PostgresCredentialStore) MarkEmailVerified(ctx context.Context, id string) error {
	return s.repo.MarkEmailVerified(ctx, id)
}

func fromRecord(record *postgres.PrincipalRecord) *PrincipalCredential {
	return &PrincipalCredential{
		ID:            record.ID,
		Email:         record.Email,
		PasswordHash:  record.PasswordHash,
		EmailVerified: record.EmailVerified,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

var _ CredentialStore = (*PostgresCredentialStore)(nil)
