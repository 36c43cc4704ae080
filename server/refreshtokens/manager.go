// Package refreshtokens issues and rotates the stub API's opaque refresh tokens.
package refreshtokens

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo   Repo
	expiry time.Duration
	mu     sync.Mutex
}

func NewManager(repo Repo, expiry time.Duration) *Manager {
	return &Manager{
		repo:   repo,
		expiry: expiry,
	}
}

// Create issues a new refresh token for userID, replacing any token the user already has
func (m *Manager) Create(userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(userID)
}

func (m *Manager) create(userID int64) (string, error) {
	if existing, err := m.repo.GetByUserID(userID); err == nil && existing != nil {
		if err := m.repo.Delete(existing.Token); err != nil {
			return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	token := uuid.NewString()
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  token,
		UserID: userID,
		Iat:    NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return token, nil
}

// Rotate consumes token and issues its replacement. A token is accepted once.
func (m *Manager) Rotate(token string) (userID int64, next string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rt, err := m.repo.Get(token)
	if err != nil || rt == nil {
		return 0, "", gymerrors.ErrInvalidRefreshToken
	}
	if m.IsExpired(rt) {
		_ = m.repo.Delete(token)
		return 0, "", gymerrors.Wrapf(gymerrors.ErrInvalidRefreshToken, "expired")
	}

	next, err = m.create(rt.UserID)
	if err != nil {
		return 0, "", err
	}
	return rt.UserID, next, nil
}

func (m *Manager) Get(token string) (*StoredRefreshToken, error) {
	return m.repo.Get(token)
}

// Revoke removes the refresh token held by userID, if any
func (m *Manager) Revoke(userID int64) error {
	rt, err := m.repo.GetByUserID(userID)
	if err != nil {
		return nil
	}
	return m.repo.Delete(rt.Token)
}

func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return m.expiry > 0 && NowTimeFunc().Sub(rt.Iat) > m.expiry
}
