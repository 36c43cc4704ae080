package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-gym-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestClient_Defaults(t *testing.T) {
	t.Setenv("GYM_BASE_URL", "")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "")

	c := config.Client{}
	require.Equal(t, "http://localhost:3333", c.GetBaseURL())
	require.Equal(t, 15*time.Second, c.GetRequestTimeout())
	require.Equal(t, 4, c.GetCatalogConcurrency())
}

func TestClient_BaseURLTrimsSlash(t *testing.T) {
	t.Setenv("GYM_BASE_URL", "https://gym.example.com/")
	require.Equal(t, "https://gym.example.com", config.Client{}.GetBaseURL())
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "soon")
	require.Equal(t, 15*time.Second, config.Client{}.GetRequestTimeout())

	t.Setenv("REQUEST_TIMEOUT_SECONDS", "-3")
	require.Equal(t, 15*time.Second, config.Client{}.GetRequestTimeout())
}

func TestStub_PortPrefix(t *testing.T) {
	t.Setenv("PORT", "9000")
	require.Equal(t, ":9000", config.Stub{}.GetPort())
}

func TestNew_LoadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CREDENTIAL_BACKEND=redis\n"), 0o600))

	// t.Setenv registers cleanup; unset afterwards so godotenv can populate it.
	t.Setenv("CREDENTIAL_BACKEND", "")
	require.NoError(t, os.Unsetenv("CREDENTIAL_BACKEND"))

	c := config.New(envFile)
	require.Equal(t, config.CredentialBackendRedis, c.GetCredentialBackend())
}
