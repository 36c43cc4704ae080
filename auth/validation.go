package auth

import (
	"fmt"
	"strings"

	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/jrsteele09/go-gym-client/users"
)

// validateSignIn rejects input the API would refuse before spending a request on it
func validateSignIn(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", gymerrors.ErrInvalidRequest)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", gymerrors.ErrInvalidRequest)
	}
	return users.ValidateEmail(strings.TrimSpace(email))
}

// mergeProfile applies an accepted profile update to the signed-in user. Only the name is
// part of the stored profile.
func mergeProfile(current users.User, update users.ProfileUpdate) users.User {
	current.Name = strings.TrimSpace(update.Name)
	return current
}
