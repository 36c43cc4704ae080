package auth

import (
	"errors"

	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
)

var (
	// ErrAuthenticationFailed is returned by SignIn for every failure; the cause is wrapped
	ErrAuthenticationFailed = gymerrors.ErrAuthenticationFailed
	ErrNotAuthenticated     = gymerrors.ErrNotAuthenticated
	ErrClosed               = errors.New("session manager closed")
)
