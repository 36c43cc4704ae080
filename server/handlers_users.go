package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/jrsteele09/go-gym-client/internal/utils"
	"github.com/jrsteele09/go-gym-client/users"
)

const (
	maxAvatarSize = 5 << 20

	msgEmailInUse       = "E-mail already in use."
	msgUserNotFound     = "User not found."
	msgOldPassword      = "Old password does not match."
	msgAvatarRequired   = "Avatar file is required."
	msgAvatarNotAnImage = "Avatar must be an image."
)

// CreateUserHandler registers an account
func (s *Server) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.SignUpRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := req.Validate(); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := s.createUser(req.Name, req.Email, req.Password)
		if err != nil {
			if gymerrors.Is(err, gymerrors.ErrInvalidRequest) {
				writeJSONError(w, http.StatusBadRequest, msgEmailInUse)
				return
			}
			s.logger.Error().Err(err).Msg("failed to create user")
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

// UpdateUserHandler changes the signed-in user's name and, with the old password, password
func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update users.ProfileUpdate
		if !decodeJSON(w, r, &update) {
			return
		}
		if err := update.Validate(); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := s.repos.Users.GetByID(userIDFromContext(r.Context()))
		if err != nil {
			writeJSONError(w, http.StatusNotFound, msgUserNotFound)
			return
		}

		if update.Password != nil {
			if !users.CheckPasswordHash(utils.Value(update.OldPassword), user.PasswordHash) {
				writeJSONError(w, http.StatusBadRequest, msgOldPassword)
				return
			}
			hash, err := users.HashPassword(*update.Password)
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, msgInternal)
				return
			}
			user.PasswordHash = hash
		}
		user.Name = strings.TrimSpace(update.Name)
		user.UpdatedAt = time.Now().UTC()

		if err := s.repos.Users.Upsert(user); err != nil {
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// UpdateAvatarHandler stores the multipart "avatar" file and points the user at it
func (s *Server) UpdateAvatarHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+1024)
		file, header, err := r.FormFile("avatar")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, msgAvatarRequired)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil || len(data) == 0 {
			writeJSONError(w, http.StatusBadRequest, msgAvatarRequired)
			return
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		if !strings.HasPrefix(contentType, "image/") {
			writeJSONError(w, http.StatusBadRequest, msgAvatarNotAnImage)
			return
		}

		user, err := s.repos.Users.GetByID(userIDFromContext(r.Context()))
		if err != nil {
			writeJSONError(w, http.StatusNotFound, msgUserNotFound)
			return
		}

		fileName := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
		s.putAvatar(fileName, storedAvatar{contentType: contentType, data: data}, user.Avatar)

		user.Avatar = fileName
		user.UpdatedAt = time.Now().UTC()
		if err := s.repos.Users.Upsert(user); err != nil {
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
