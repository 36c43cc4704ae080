package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	ClientConfig
	StorageConfig
	StubConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
	GetSentryDSN() string
}

type ClientConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetCatalogConcurrency() int
}

type mainConfig struct {
	EnvVars
	Client
	Storage
	Stub
}

// New returns the environment backed configuration. Values present in a .env file are
// loaded into the process environment first; variables already set win.
func New(dotEnvFiles ...string) Config {
	_ = godotenv.Load(dotEnvFiles...)
	return mainConfig{}
}
