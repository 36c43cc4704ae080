package redisstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-gym-client/credentials"
	"github.com/jrsteele09/go-gym-client/credentials/redisstore"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStore_SetGetRemove(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store, err := redisstore.New(rdb, "gym:ana")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, credentials.KeyRefreshToken, "R1"))
	mr.CheckGet(t, "gym:ana:gym.refresh_token", "R1")

	v, err := store.Get(ctx, credentials.KeyRefreshToken)
	require.NoError(t, err)
	require.Equal(t, "R1", v)

	require.NoError(t, store.Remove(ctx, credentials.KeyRefreshToken))
	require.NoError(t, store.Remove(ctx, credentials.KeyRefreshToken))

	_, err = store.Get(ctx, credentials.KeyRefreshToken)
	require.ErrorIs(t, err, gymerrors.ErrCredentialNotFound)
}

func TestStore_PrefixesIsolateProfiles(t *testing.T) {
	_, rdb := newTestRedis(t)
	ana, err := redisstore.New(rdb, "gym:ana")
	require.NoError(t, err)
	bob, err := redisstore.New(rdb, "gym:bob")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, ana.Set(ctx, credentials.KeyAccessToken, "T-ana"))

	_, err = bob.Get(ctx, credentials.KeyAccessToken)
	require.ErrorIs(t, err, gymerrors.ErrCredentialNotFound)
}

func TestStore_ConnectionErrors(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store, err := redisstore.New(rdb, "")
	require.NoError(t, err)

	mr.Close()
	_, err = store.Get(context.Background(), credentials.KeyUser)
	require.Error(t, err)
	require.NotErrorIs(t, err, gymerrors.ErrCredentialNotFound)
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := redisstore.New(nil, "gym")
	require.Error(t, err)
}
