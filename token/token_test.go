package token_test

import (
	"net/http"
	"testing"
	"time"

	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/jrsteele09/go-gym-client/token"
	"github.com/stretchr/testify/require"
)

func fixedNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := token.NowTimeFunc
	token.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { token.NowTimeFunc = prev })
}

func TestHMACSigner_IssueAndVerify(t *testing.T) {
	signer, err := token.NewHMACSigner("secret", "gymstub")
	require.NoError(t, err)

	raw, err := signer.Issue(42, time.Minute)
	require.NoError(t, err)

	userID, err := signer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestHMACSigner_RequiresSecret(t *testing.T) {
	_, err := token.NewHMACSigner("", "gymstub")
	require.Error(t, err)
}

func TestHMACSigner_Expired(t *testing.T) {
	signer, err := token.NewHMACSigner("secret", "gymstub")
	require.NoError(t, err)

	fixedNow(t, time.Now().Add(-time.Hour))
	raw, err := signer.Issue(1, time.Minute)
	require.NoError(t, err)

	token.NowTimeFunc = time.Now
	_, err = signer.Verify(raw)
	require.ErrorIs(t, err, gymerrors.ErrTokenExpired)
}

func TestHMACSigner_WrongSecret(t *testing.T) {
	a, err := token.NewHMACSigner("secret-a", "gymstub")
	require.NoError(t, err)
	b, err := token.NewHMACSigner("secret-b", "gymstub")
	require.NoError(t, err)

	raw, err := a.Issue(1, time.Minute)
	require.NoError(t, err)

	_, err = b.Verify(raw)
	require.ErrorIs(t, err, gymerrors.ErrInvalidToken)

	_, err = a.Verify("not-a-jwt")
	require.ErrorIs(t, err, gymerrors.ErrInvalidToken)
}

func TestInspect(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	fixedNow(t, now)

	signer, err := token.NewHMACSigner("secret", "gymstub")
	require.NoError(t, err)
	raw, err := signer.Issue(7, 10*time.Minute)
	require.NoError(t, err)

	claims, err := token.Inspect(raw)
	require.NoError(t, err)
	require.Equal(t, "7", claims.Subject)
	require.Equal(t, int64(7), claims.UserID)
	require.True(t, claims.IssuedAt.Equal(now))
	require.True(t, claims.ExpiresAt.Equal(now.Add(10*time.Minute)))
	require.False(t, claims.ExpiresWithin(time.Minute))
	require.True(t, claims.ExpiresWithin(11*time.Minute))

	_, err = token.Inspect("opaque")
	require.ErrorIs(t, err, gymerrors.ErrInvalidToken)
}

func TestNewPairAndSetBearer(t *testing.T) {
	signer, err := token.NewHMACSigner("secret", "gymstub")
	require.NoError(t, err)
	raw, err := signer.Issue(7, time.Minute)
	require.NoError(t, err)

	pair := token.NewPair(raw, "R1")
	require.Equal(t, "R1", pair.RefreshToken)
	require.False(t, pair.Expiry.IsZero())

	opaque := token.NewPair("T2", "R2")
	require.True(t, opaque.Expiry.IsZero())
	require.True(t, opaque.Valid())

	h := http.Header{}
	token.SetBearer(h, opaque)
	require.Equal(t, "Bearer T2", h.Get("Authorization"))
}
