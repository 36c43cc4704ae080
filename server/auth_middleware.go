package server

import (
	"context"
	"net/http"
	"strings"

	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUserID stores the authenticated user ID
const ContextKeyUserID ContextKey = "user_id"

// Messages the gym API answers an unauthorised request with
const (
	msgTokenMissing = "token.missing"
	msgTokenInvalid = "token.invalid"
	msgTokenExpired = "token.expired"
)

// RequireAuth is middleware that validates the Bearer access token and puts the user id
// into the request context
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, msgTokenMissing)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				writeJSONError(w, http.StatusUnauthorized, msgTokenInvalid)
				return
			}

			userID, err := s.signer.Verify(parts[1])
			if err != nil {
				if gymerrors.Is(err, gymerrors.ErrTokenExpired) {
					writeJSONError(w, http.StatusUnauthorized, msgTokenExpired)
					return
				}
				writeJSONError(w, http.StatusUnauthorized, msgTokenInvalid)
				return
			}

			if _, err := s.repos.Users.GetByID(userID); err != nil {
				writeJSONError(w, http.StatusUnauthorized, msgTokenInvalid)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, userID)
			next(w, r.WithContext(ctx))
		}
	}
}

func userIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(ContextKeyUserID).(int64)
	return id
}
