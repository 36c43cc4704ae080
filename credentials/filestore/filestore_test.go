package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-gym-client/credentials"
	"github.com/jrsteele09/go-gym-client/credentials/filestore"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	ctx := context.Background()

	first, err := filestore.New(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, credentials.KeyAccessToken, "T1"))
	require.NoError(t, first.Set(ctx, credentials.KeyRefreshToken, "R1"))

	second, err := filestore.New(path)
	require.NoError(t, err)
	v, err := second.Get(ctx, credentials.KeyRefreshToken)
	require.NoError(t, err)
	require.Equal(t, "R1", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_MissingKeyAndRemove(t *testing.T) {
	store, err := filestore.New(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Get(ctx, credentials.KeyUser)
	require.ErrorIs(t, err, gymerrors.ErrCredentialNotFound)

	require.NoError(t, store.Remove(ctx, credentials.KeyUser))

	require.NoError(t, store.Set(ctx, credentials.KeyUser, `{"id":1}`))
	require.NoError(t, store.Remove(ctx, credentials.KeyUser))
	_, err = store.Get(ctx, credentials.KeyUser)
	require.ErrorIs(t, err, gymerrors.ErrCredentialNotFound)
}

func TestStore_Encrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	ctx := context.Background()

	store, err := filestore.New(path, filestore.WithPassphrase("correct horse"))
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, credentials.KeyAccessToken, "T1-secret"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "T1-secret")

	reopened, err := filestore.New(path, filestore.WithPassphrase("correct horse"))
	require.NoError(t, err)
	v, err := reopened.Get(ctx, credentials.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "T1-secret", v)

	wrong, err := filestore.New(path, filestore.WithPassphrase("battery staple"))
	require.NoError(t, err)
	_, err = wrong.Get(ctx, credentials.KeyAccessToken)
	require.ErrorIs(t, err, gymerrors.ErrBadPassphrase)

	plain, err := filestore.New(path)
	require.NoError(t, err)
	_, err = plain.Get(ctx, credentials.KeyAccessToken)
	require.ErrorIs(t, err, gymerrors.ErrCredentialCorrupt)
}

func TestStore_WorksWithManager(t *testing.T) {
	store, err := filestore.New(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)
	m := credentials.NewManager(store)
	ctx := context.Background()

	require.NoError(t, m.SaveTokens(ctx, "T2", "R2"))
	token, err := m.RefreshToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "R2", token)
}
