package services

import (
	"context"
	"ecommerce/internal/models"
	"ecommerce/internal/repository"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// memUserRepo is an in-memory UserRepo keyed by email.
type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]*models.User
	nextID int64
	err    error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (m *memUserRepo) IsEmailTaken(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.users[email]
	return ok, nil
}

func (m *memUserRepo) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = t0
	user.UpdatedAt = t0
	cp := *user
	m.users[user.Email] = &cp
	return nil
}

func (m *memUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) setRole(email, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[email].Role = role
}

func (m *memUserRepo) delete(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, email)
}

// memResetRepo mirrors PasswordResetRepository: Redeem applies both writes
// under one lock or none of them.
type memResetRepo struct {
	mu     sync.Mutex
	users  *memUserRepo
	tokens map[string]*models.PasswordResetToken
	nextID int64
	err    error
}

func newMemResetRepo(users *memUserRepo) *memResetRepo {
	return &memResetRepo{users: users, tokens: make(map[string]*models.PasswordResetToken)}
}

func (m *memResetRepo) Create(_ context.Context, t *models.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = t0
	cp := *t
	m.tokens[t.TokenHash] = &cp
	return nil
}

func (m *memResetRepo) Redeem(_ context.Context, tokenHash string, check repository.RedeemCheck, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	t, ok := m.tokens[tokenHash]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *t
	if err := check(&cp); err != nil {
		return err
	}

	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	for _, u := range m.users.users {
		if u.ID == t.UserID {
			t.Used = true
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memResetRepo) byUser(userID int64) []*models.PasswordResetToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.PasswordResetToken
	for _, t := range m.tokens {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}

type mockResetSender struct {
	mock.Mock
}

func (m *mockResetSender) SendPasswordReset(ctx context.Context, to, token string) error {
	args := m.Called(ctx, to, token)
	return args.Error(0)
}
