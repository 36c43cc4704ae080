package config

import "path/filepath"

type StorageConfig interface {
	GetCredentialBackend() string
	GetCredentialFile() string
	GetCredentialPassphrase() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisPrefix() string
}

const (
	CredentialBackendFile  = "file"
	CredentialBackendRedis = "redis"
)

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetCredentialBackend() string {
	return GetEnv("CREDENTIAL_BACKEND", CredentialBackendFile)
}

func (Storage) GetCredentialFile() string {
	return GetEnv("CREDENTIAL_FILE", filepath.Join(EnvVars{}.GetDataFolder(), "credentials.json"))
}

// GetCredentialPassphrase enables at-rest encryption of the credential file when non-empty
func (Storage) GetCredentialPassphrase() string {
	return GetEnv("CREDENTIAL_PASSPHRASE", "")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "gym:default")
}
