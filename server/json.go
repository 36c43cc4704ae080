package server

import (
	"encoding/json"
	"net/http"
)

const (
	contentTypeJSON = "application/json"

	msgInternal       = "Internal server error."
	msgInvalidRequest = "Invalid request body."
)

// errorResponse is the body of every non-2xx answer of the gym API
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Status: "error", Message: message})
}

// decodeJSON reads the request body into v, answering 400 itself when it cannot
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, msgInvalidRequest)
		return false
	}
	return true
}
