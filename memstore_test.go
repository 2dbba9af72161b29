package main

import (
	"context"
	"sync"
	"time"

	"github.com/polgussi23/BeerWrapped-api/models"
)

// memStore is an in-memory Store used to drive session and handler tests
// without a live Postgres.
type memStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
	tokens map[string]*models.RefreshToken
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[uint]*models.User),
		tokens: make(map[string]*models.RefreshToken),
	}
}

func (m *memStore) UserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) StartDay(_ context.Context, userID uint) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return u.StartDay, nil
}

func (m *memStore) SetStartDay(_ context.Context, userID uint, day time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	d := day
	u.StartDay = &d
	return nil
}

func (m *memStore) SaveRefreshToken(_ context.Context, userID uint, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (m *memStore) FindRefreshToken(_ context.Context, userID uint, token string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.tokens[token]
	if !ok || rt.UserID != userID || !rt.ExpiresAt.After(time.Now()) {
		return nil, ErrNotFound
	}
	cp := *rt
	return &cp, nil
}

func (m *memStore) DeleteRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (m *memStore) RotateRefreshToken(_ context.Context, oldToken string, userID uint, newToken string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, oldToken)
	m.tokens[newToken] = &models.RefreshToken{UserID: userID, Token: newToken, ExpiresAt: expiresAt}
	return nil
}

func (m *memStore) DeleteRefreshTokensForUser(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tok, rt := range m.tokens {
		if rt.UserID == userID {
			delete(m.tokens, tok)
		}
	}
	return nil
}

func (m *memStore) DeleteExpiredRefreshTokens(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	now := time.Now()
	for tok, rt := range m.tokens {
		if !rt.ExpiresAt.After(now) {
			delete(m.tokens, tok)
			n++
		}
	}
	return n, nil
}

func (m *memStore) tokenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}
