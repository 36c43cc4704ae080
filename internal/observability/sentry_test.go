package observability_test

import (
	"errors"
	"testing"

	"github.com/jrsteele09/go-gym-client/internal/observability"
	"github.com/stretchr/testify/require"
)

func TestInitSentry_NoDSN(t *testing.T) {
	require.NoError(t, observability.InitSentry("", "DEV", "test"))
	// Without a client these are no-ops
	observability.CaptureError(errors.New("boom"), "groups")
	observability.CaptureError(nil, "groups")
	observability.FlushSentry()
}

func TestInitSentry_BadDSN(t *testing.T) {
	require.Error(t, observability.InitSentry("not a dsn", "DEV", "test"))
}

func TestCapturePanic_Repanics(t *testing.T) {
	require.PanicsWithValue(t, "boom", func() {
		defer observability.CapturePanic("groups")
		panic("boom")
	})
}
