package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/repository"
)

// fakeAccountRepo is an in-memory AccountRepository for service tests.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newFakeAccountRepo(accounts ...domain.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
	for _, account := range accounts {
		copied := account
		repo.accounts[account.ID] = &copied
	}
	return repo
}

func (r *fakeAccountRepo) get(id string) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[id]
}

func (r *fakeAccountRepo) Create(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicate
		}
	}
	copied := account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepo) List(_ context.Context, filter port.AccountFilter) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Account
	for _, account := range r.accounts {
		if filter.Role != "" && account.Role != filter.Role {
			continue
		}
		if filter.Locked != nil && account.IsLocked != *filter.Locked {
			continue
		}
		out = append(out, *account)
	}
	return out, nil
}

func (r *fakeAccountRepo) Count(ctx context.Context, filter port.AccountFilter) (int, error) {
	accounts, err := r.List(ctx, filter)
	return len(accounts), err
}

func (r *fakeAccountRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.Role = role
	return nil
}

func (r *fakeAccountRepo) UpdateLockState(_ context.Context, id string, fields domain.LockFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.FailedAttempts = fields.FailedAttempts
	account.IsLocked = fields.IsLocked
	account.LockUntil = fields.LockUntil
	account.LockoutCount = fields.LockoutCount
	account.AdminUnlockRequired = fields.AdminUnlockRequired
	return nil
}

func (r *fakeAccountRepo) SetFailedAttempts(_ context.Context, id string, attempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.FailedAttempts = attempts
	return nil
}

func (r *fakeAccountRepo) ClearTemporaryLock(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.IsLocked = false
	account.FailedAttempts = 0
	account.LockUntil = nil
	return nil
}

func (r *fakeAccountRepo) ResetFailureCounters(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.FailedAttempts = 0
	account.LockUntil = nil
	return nil
}

// fakeProvider scripts identity-provider outcomes per email.
type fakeProvider struct {
	principals map[string]domain.Principal // keyed by email
	password   string
	signIns    int
	signOuts   []string
	sentVerify []string
	sentReset  []string
	confirmErr error
	applyErr   error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{principals: make(map[string]domain.Principal), password: "Str0ng!pass"}
}

func (p *fakeProvider) addPrincipal(id, email string, verified bool) {
	p.principals[email] = domain.Principal{ID: id, Email: email, EmailVerified: verified}
}

func (p *fakeProvider) CreateAccount(_ context.Context, email, _ string) (domain.Principal, error) {
	if _, exists := p.principals[email]; exists {
		return domain.Principal{}, domain.NewProviderError(domain.ProviderErrDuplicateEmail, "an account with this email already exists", nil)
	}
	principal := domain.Principal{ID: "principal-" + email, Email: email}
	p.principals[email] = principal
	return principal, nil
}

func (p *fakeProvider) SignIn(_ context.Context, email, password string) (domain.Principal, error) {
	p.signIns++
	principal, ok := p.principals[email]
	if !ok || password != p.password {
		return domain.Principal{}, domain.NewProviderError(domain.ProviderErrInvalidCredential, "invalid email or password", nil)
	}
	return principal, nil
}

func (p *fakeProvider) SignOut(_ context.Context, principalID string) error {
	p.signOuts = append(p.signOuts, principalID)
	return nil
}

func (p *fakeProvider) GetPrincipal(_ context.Context, principalID string) (domain.Principal, error) {
	for _, principal := range p.principals {
		if principal.ID == principalID {
			return principal, nil
		}
	}
	return domain.Principal{}, domain.NewProviderError(domain.ProviderErrInvalidCredential, "unknown principal", nil)
}

func (p *fakeProvider) SendVerificationEmail(_ context.Context, principalID, _ string) error {
	p.sentVerify = append(p.sentVerify, principalID)
	return nil
}

func (p *fakeProvider) ApplyActionCode(_ context.Context, _ string) error {
	return p.applyErr
}

func (p *fakeProvider) SendPasswordResetEmail(_ context.Context, email, _ string) error {
	p.sentReset = append(p.sentReset, email)
	return nil
}

func (p *fakeProvider) ConfirmPasswordReset(_ context.Context, _, _ string) error {
	return p.confirmErr
}

// fakeSessionStore is an in-memory SessionStore.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.ConsoleSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]domain.ConsoleSession)}
}

func (s *fakeSessionStore) Put(_ context.Context, session domain.ConsoleSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, id string) (*domain.ConsoleSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu         sync.Mutex
	registered []domain.AccountRegisteredEvent
	failed     []domain.LoginFailedEvent
	locked     []domain.AccountLockedEvent
	unlocked   []domain.AccountUnlockedEvent
	resets     []domain.PasswordResetRequestedEvent
	roleChange []domain.RoleChangedEvent
}

func (p *recordingPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return nil
}

func (p *recordingPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = append(p.failed, event)
	return nil
}

func (p *recordingPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locked = append(p.locked, event)
	return nil
}

func (p *recordingPublisher) PublishAccountUnlocked(_ context.Context, event domain.AccountUnlockedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unlocked = append(p.unlocked, event)
	return nil
}

func (p *recordingPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets = append(p.resets, event)
	return nil
}

func (p *recordingPublisher) PublishRoleChanged(_ context.Context, event domain.RoleChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roleChange = append(p.roleChange, event)
	return nil
}

// fixedClock returns a controllable now() function.
type fixedClock struct {
	mu sync.Mutex
	at time.Time
}

func newFixedClock(at time.Time) *fixedClock {
	return &fixedClock{at: at}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}
