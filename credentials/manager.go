package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/jrsteele09/go-gym-client/sessions"
	"github.com/jrsteele09/go-gym-client/users"
)

// Manager gives typed access to the credentials held in a Repo
type Manager struct {
	repo Repo
}

func NewManager(repo Repo) *Manager {
	return &Manager{repo: repo}
}

// AccessToken returns the stored access token, or "" when none is stored
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	return m.optional(ctx, KeyAccessToken)
}

func (m *Manager) SaveAccessToken(ctx context.Context, token string) error {
	return m.repo.Set(ctx, KeyAccessToken, token)
}

func (m *Manager) RemoveAccessToken(ctx context.Context) error {
	return m.repo.Remove(ctx, KeyAccessToken)
}

// RefreshToken returns the stored refresh token, or "" when none is stored
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	return m.optional(ctx, KeyRefreshToken)
}

func (m *Manager) SaveRefreshToken(ctx context.Context, token string) error {
	return m.repo.Set(ctx, KeyRefreshToken, token)
}

func (m *Manager) RemoveRefreshToken(ctx context.Context) error {
	return m.repo.Remove(ctx, KeyRefreshToken)
}

// SaveTokens persists a rotated token pair
func (m *Manager) SaveTokens(ctx context.Context, accessToken, refreshToken string) error {
	if err := m.SaveAccessToken(ctx, accessToken); err != nil {
		return gymerrors.Wrapf(err, "save access token")
	}
	if err := m.SaveRefreshToken(ctx, refreshToken); err != nil {
		return gymerrors.Wrapf(err, "save refresh token")
	}
	return nil
}

// User returns the stored profile, or nil when none is stored
func (m *Manager) User(ctx context.Context) (*users.User, error) {
	raw, err := m.optional(ctx, KeyUser)
	if err != nil || raw == "" {
		return nil, err
	}
	var u users.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", gymerrors.ErrCredentialCorrupt, err)
	}
	return &u, nil
}

func (m *Manager) SaveUser(ctx context.Context, u *users.User) error {
	encoded, err := json.Marshal(u)
	if err != nil {
		return gymerrors.Wrapf(err, "encode user")
	}
	return m.repo.Set(ctx, KeyUser, string(encoded))
}

func (m *Manager) RemoveUser(ctx context.Context) error {
	return m.repo.Remove(ctx, KeyUser)
}

// SaveSession persists the user and both tokens
func (m *Manager) SaveSession(ctx context.Context, s sessions.Session) error {
	if err := m.SaveUser(ctx, &s.User); err != nil {
		return gymerrors.Wrapf(err, "save user")
	}
	return m.SaveTokens(ctx, s.AccessToken, s.RefreshToken)
}

// LoadSession returns the persisted session. ok is false unless the user, the access token
// and the refresh token are all present.
func (m *Manager) LoadSession(ctx context.Context) (s sessions.Session, ok bool, err error) {
	u, err := m.User(ctx)
	if err != nil {
		return sessions.Session{}, false, err
	}
	accessToken, err := m.AccessToken(ctx)
	if err != nil {
		return sessions.Session{}, false, err
	}
	refreshToken, err := m.RefreshToken(ctx)
	if err != nil {
		return sessions.Session{}, false, err
	}

	s = sessions.Session{AccessToken: accessToken, RefreshToken: refreshToken}
	if u != nil {
		s.User = *u
	}
	return s, s.Valid(), nil
}

// Clear removes every persisted credential. All keys are attempted even if one fails.
func (m *Manager) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range Keys {
		if err := m.repo.Remove(ctx, key); err != nil {
			errs = append(errs, gymerrors.Wrapf(err, "remove %s", key))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) optional(ctx context.Context, key Key) (string, error) {
	v, err := m.repo.Get(ctx, key)
	if errors.Is(err, gymerrors.ErrCredentialNotFound) {
		return "", nil
	}
	if err != nil {
		return "", gymerrors.Wrapf(err, "load %s", key)
	}
	return v, nil
}
