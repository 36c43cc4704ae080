package server

import (
	"fmt"
	"strings"
	"time"

	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/jrsteele09/go-gym-client/users"
)

// createUser hashes the password and stores a new account. An e-mail already in use is
// reported as ErrInvalidRequest.
func (s *Server) createUser(name, email, password string) (*users.User, error) {
	s.usersLock.Lock()
	defer s.usersLock.Unlock()

	if existing, err := s.repos.Users.GetByEmail(email); err == nil && existing != nil {
		return nil, gymerrors.Wrapf(gymerrors.ErrInvalidRequest, "e-mail %s already in use", email)
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[server createUser] failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &users.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, fmt.Errorf("[server createUser] failed to store user: %w", err)
	}
	return user, nil
}

// createDemoUser makes sure the demo account exists; an existing account is left as is
func (s *Server) createDemoUser(email, password string) error {
	if existing, err := s.repos.Users.GetByEmail(email); err == nil && existing != nil {
		return nil
	}
	if err := users.ValidatePassword(password); err != nil {
		return err
	}
	user, err := s.createUser(demoUserName(email), email, password)
	if err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("demo user created")
	return nil
}

// demoUserName derives a display name from the e-mail's local part
// Example: "ana.souza@gym.local" -> "Ana Souza"
func demoUserName(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	words := strings.FieldsFunc(local, func(r rune) bool { return r == '.' || r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Demo"
	}
	return strings.Join(words, " ")
}
