package config

import (
	"fmt"
	"strings"
	"time"
)

// StubConfig configures the local stub API server
type StubConfig interface {
	GetPort() string
	GetStubSigningKey() string
	GetStubAccessTokenExpiry() time.Duration
	GetStubRefreshTokenExpiry() time.Duration
}

type Stub struct{}

var _ StubConfig = Stub{}

func (Stub) GetPort() string {
	port := GetEnv("PORT", "3333")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (Stub) GetStubSigningKey() string {
	return GetEnv("STUB_SIGNING_KEY", "local-development-signing-key")
}

func (Stub) GetStubAccessTokenExpiry() time.Duration {
	return GetEnvSeconds("STUB_ACCESS_TOKEN_TTL_SECONDS", 15*60)
}

func (Stub) GetStubRefreshTokenExpiry() time.Duration {
	return GetEnvSeconds("STUB_REFRESH_TOKEN_TTL_SECONDS", 7*24*60*60)
}
