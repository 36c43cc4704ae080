// Package credentials persists the signed-in session on the device: the access token,
// the refresh token and the serialised user profile.
package credentials

import "context"

// Key names one durable credential entry
type Key string

const (
	KeyAccessToken  Key = "gym.token"
	KeyRefreshToken Key = "gym.refresh_token"
	KeyUser         Key = "gym.user"
)

// Keys lists every entry the client persists
var Keys = []Key{KeyAccessToken, KeyRefreshToken, KeyUser}

// Repo is durable key/value storage for credentials. Each key is independently
// readable, writable and removable and must survive process restarts.
type Repo interface {
	// Get returns errors.ErrCredentialNotFound when key is absent
	Get(ctx context.Context, key Key) (string, error)

	// Set creates or replaces the value of key
	Set(ctx context.Context, key Key, value string) error

	// Remove deletes key; removing an absent key is not an error
	Remove(ctx context.Context, key Key) error
}
