package server

import (
	"net/http"

	"github.com/jrsteele09/go-gym-client/sessions"
	"github.com/jrsteele09/go-gym-client/users"
)

const (
	msgBadCredentials       = "Incorrect e-mail or password."
	msgInvalidRefreshToken  = "Invalid refresh token."
	msgRefreshTokenRequired = "Refresh token is required."
)

// SignInHandler exchanges e-mail and password for an access token and a refresh token
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessions.SignInRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		user, err := s.repos.Users.GetByEmail(req.Email)
		if err != nil || !users.CheckPasswordHash(req.Password, user.PasswordHash) {
			writeJSONError(w, http.StatusUnauthorized, msgBadCredentials)
			return
		}

		accessToken, err := s.signer.Issue(user.ID, s.accessTTL)
		if err != nil {
			s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue access token")
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		refreshToken, err := s.refresh.Create(user.ID)
		if err != nil {
			s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue refresh token")
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}

		writeJSON(w, http.StatusOK, sessions.SignInResponse{
			User:         user,
			Token:        accessToken,
			RefreshToken: refreshToken,
		})
	}
}

// RefreshTokenHandler rotates a refresh token: the presented token is consumed and a new
// access/refresh pair is returned
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessions.RefreshRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			writeJSONError(w, http.StatusBadRequest, msgRefreshTokenRequired)
			return
		}

		userID, next, err := s.refresh.Rotate(req.RefreshToken)
		if err != nil {
			s.logger.Debug().Err(err).Msg("refresh token rejected")
			writeJSONError(w, http.StatusUnauthorized, msgInvalidRefreshToken)
			return
		}

		accessToken, err := s.signer.Issue(userID, s.accessTTL)
		if err != nil {
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to issue access token")
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}

		writeJSON(w, http.StatusOK, sessions.RefreshResponse{Token: accessToken, RefreshToken: next})
	}
}
