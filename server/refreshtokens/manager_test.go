package refreshtokens_test

import (
	"testing"
	"time"

	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/jrsteele09/go-gym-client/server/refreshtokens"
	refreshrepofake "github.com/jrsteele09/go-gym-client/server/refreshtokens/repofake"
	"github.com/stretchr/testify/require"
)

func TestManager_CreateReplacesUsersToken(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	m := refreshtokens.NewManager(repo, time.Hour)

	first, err := m.Create(1)
	require.NoError(t, err)
	second, err := m.Create(1)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = m.Get(first)
	require.Error(t, err)
	rt, err := m.Get(second)
	require.NoError(t, err)
	require.Equal(t, int64(1), rt.UserID)
}

func TestManager_RotateAcceptsTokenOnce(t *testing.T) {
	m := refreshtokens.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), time.Hour)

	r1, err := m.Create(7)
	require.NoError(t, err)

	userID, r2, err := m.Rotate(r1)
	require.NoError(t, err)
	require.Equal(t, int64(7), userID)
	require.NotEqual(t, r1, r2)

	_, _, err = m.Rotate(r1)
	require.ErrorIs(t, err, gymerrors.ErrInvalidRefreshToken)

	_, _, err = m.Rotate("unknown")
	require.ErrorIs(t, err, gymerrors.ErrInvalidRefreshToken)
}

func TestManager_RotateRejectsExpired(t *testing.T) {
	m := refreshtokens.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), time.Minute)

	refreshtokens.NowTimeFunc = func() time.Time { return time.Now().Add(-time.Hour) }
	t.Cleanup(func() { refreshtokens.NowTimeFunc = time.Now })
	r1, err := m.Create(7)
	require.NoError(t, err)

	refreshtokens.NowTimeFunc = time.Now
	_, _, err = m.Rotate(r1)
	require.ErrorIs(t, err, gymerrors.ErrInvalidRefreshToken)
}

func TestManager_Revoke(t *testing.T) {
	m := refreshtokens.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), time.Hour)
	r1, err := m.Create(3)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(3))
	require.NoError(t, m.Revoke(3))
	_, _, err = m.Rotate(r1)
	require.Error(t, err)
}

func TestFakeRefreshTokenRepo_List(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	base := time.Now()
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, repo.Upsert(&refreshtokens.StoredRefreshToken{Token: string(rune('a' + i)), UserID: i, Iat: base.Add(time.Duration(i) * time.Second)}))
	}

	all, err := repo.List(0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, int64(1), all[0].UserID)

	page, err := repo.List(1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, int64(2), page[0].UserID)

	empty, err := repo.List(5, 1)
	require.NoError(t, err)
	require.Empty(t, empty)
}
