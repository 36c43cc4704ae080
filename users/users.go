package users

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	MaxNameLength     = 150
)

type User struct {
	ID           int64     `json:"id"`                   // Identifier assigned by the API
	Name         string    `json:"name"`                 // Display name
	Email        string    `json:"email"`                // Sign-in e-mail
	Avatar       string    `json:"avatar,omitempty"`     // Avatar file name, served from /avatar/{file}
	PasswordHash string    `json:"-"`                    // Only populated by the stub server - never serialize
	CreatedAt    time.Time `json:"created_at,omitempty"` // When the account was created
	UpdatedAt    time.Time `json:"updated_at,omitempty"` // Last profile change
}

// IsZero reports whether u carries no identity (the empty, signed-out user)
func (u *User) IsZero() bool {
	return u == nil || u.ID == 0
}

// SignUpRequest is the body of POST /users
type SignUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

func (r SignUpRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", gymerrors.ErrInvalidRequest)
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := ValidatePassword(r.Password); err != nil {
		return err
	}
	if r.ConfirmPassword != "" && r.ConfirmPassword != r.Password {
		return fmt.Errorf("%w: passwords do not match", gymerrors.ErrInvalidRequest)
	}
	return nil
}

// ProfileUpdate is the body of PUT /users. Password and OldPassword are optional but
// must be given together.
type ProfileUpdate struct {
	Name            string  `json:"name"`
	Password        *string `json:"password,omitempty"`
	OldPassword     *string `json:"old_password,omitempty"`
	ConfirmPassword *string `json:"-"`
}

func (p ProfileUpdate) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", gymerrors.ErrInvalidRequest)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name is too long", gymerrors.ErrInvalidRequest)
	}
	if p.Password == nil {
		return nil
	}
	if err := ValidatePassword(*p.Password); err != nil {
		return err
	}
	if p.OldPassword == nil || *p.OldPassword == "" {
		return fmt.Errorf("%w: old password is required to change the password", gymerrors.ErrInvalidRequest)
	}
	if p.ConfirmPassword != nil && *p.ConfirmPassword != *p.Password {
		return fmt.Errorf("%w: passwords do not match", gymerrors.ErrInvalidRequest)
	}
	return nil
}

func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", gymerrors.ErrInvalidRequest)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return fmt.Errorf("%w: invalid email %q", gymerrors.ErrInvalidRequest, email)
	}
	return nil
}

// ValidatePassword checks the minimum length the API accepts
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", gymerrors.ErrInvalidRequest, MinPasswordLength)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// AvatarURL returns where the user's avatar is served, or "" when none is set
func AvatarURL(baseURL string, u *User) string {
	if u.IsZero() || u.Avatar == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/avatar/" + u.Avatar
}
