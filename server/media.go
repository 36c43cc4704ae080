package server

import (
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

const msgFileNotFound = "File not found."

type storedAvatar struct {
	contentType string
	data        []byte
}

// putAvatar stores an uploaded avatar and drops the one it replaces
func (s *Server) putAvatar(name string, avatar storedAvatar, replaces string) {
	s.avatarsLock.Lock()
	defer s.avatarsLock.Unlock()
	if replaces != "" {
		delete(s.avatars, replaces)
	}
	s.avatars[name] = avatar
}

func (s *Server) AvatarFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.avatarsLock.RLock()
		avatar, ok := s.avatars[r.PathValue("file")]
		s.avatarsLock.RUnlock()
		if !ok {
			writeJSONError(w, http.StatusNotFound, msgFileNotFound)
			return
		}
		w.Header().Set("Content-Type", avatar.contentType)
		_, _ = w.Write(avatar.data)
	}
}

// ExerciseMediaHandler serves /exercise/thumb/{file} and /exercise/demo/{file}
func (s *Server) ExerciseMediaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := r.PathValue("kind")
		if s.media == nil || (kind != "thumb" && kind != "demo") {
			writeJSONError(w, http.StatusNotFound, msgFileNotFound)
			return
		}
		if err := StreamFile(w, s.media, path.Join("exercise", kind, r.PathValue("file"))); err != nil {
			s.logRoute(r.Method, r.URL.Path, err.Error())
			writeJSONError(w, http.StatusNotFound, msgFileNotFound)
		}
	}
}

// StreamFile writes fileName from fsys with a content type derived from its extension
func StreamFile(w http.ResponseWriter, fsys fs.FS, fileName string) error {
	if !fs.ValidPath(fileName) {
		return fmt.Errorf("invalid path %q", fileName)
	}
	data, err := fs.ReadFile(fsys, fileName)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fileName, err)
	}

	ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	if ctype == "" {
		// Fallback for unknown extensions
		ctype = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ctype)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s content: %w", fileName, err)
	}
	return nil
}
