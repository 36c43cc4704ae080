package config

import (
	"strings"
	"time"
)

const (
	baseURLVar            = "GYM_BASE_URL"
	requestTimeoutVar     = "REQUEST_TIMEOUT_SECONDS"
	catalogConcurrencyVar = "CATALOG_CONCURRENCY"
)

type Client struct{}

var _ ClientConfig = Client{}

// GetBaseURL returns the root of the gym REST API without a trailing slash
func (Client) GetBaseURL() string {
	return strings.TrimRight(GetEnv(baseURLVar, "http://localhost:3333"), "/")
}

func (Client) GetRequestTimeout() time.Duration {
	return GetEnvSeconds(requestTimeoutVar, 15)
}

func (Client) GetCatalogConcurrency() int {
	return GetEnvInt(catalogConcurrencyVar, 4)
}
