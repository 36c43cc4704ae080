package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-gym-client/history"
)

const (
	msgExerciseNotFound    = "Exercise not found."
	msgExerciseNotInformed = "Exercise not informed."
)

func (s *Server) GroupsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := s.repos.Exercises.Groups()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

func (s *Server) ExercisesByGroupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.repos.Exercises.ByGroup(r.PathValue("group"))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) ExerciseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, msgExerciseNotFound)
			return
		}
		e, err := s.repos.Exercises.Get(id)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, msgExerciseNotFound)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// RegisterHistoryHandler records the exercise as done now by the signed-in user
func (s *Server) RegisterHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req history.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.ExerciseID <= 0 {
			writeJSONError(w, http.StatusBadRequest, msgExerciseNotInformed)
			return
		}
		e, err := s.repos.Exercises.Get(req.ExerciseID)
		if err != nil {
			writeJSONError(w, http.StatusNotFound, msgExerciseNotFound)
			return
		}

		record := &history.Record{
			UserID:     userIDFromContext(r.Context()),
			ExerciseID: e.ID,
			Name:       e.Name,
			Group:      e.Group,
		}
		if err := s.repos.History.Add(record); err != nil {
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

// HistoryHandler lists the signed-in user's history grouped by day, newest first
func (s *Server) HistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.repos.History.ListByUser(userIDFromContext(r.Context()))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		writeJSON(w, http.StatusOK, history.GroupByDay(records, s.location))
	}
}
