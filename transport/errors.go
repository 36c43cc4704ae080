package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned for every non-2xx response
type HTTPError struct {
	StatusCode int
	Body       []byte
	Request    *Request

	// Authorization is the header value the request actually went out with
	Authorization string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Request.Method, e.Request.Path, e.StatusCode)
}

// Message returns the server supplied {"message": "..."} text, if the body has that shape
func (e *HTTPError) Message() (string, bool) {
	var payload struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil || payload.Message == nil || *payload.Message == "" {
		return "", false
	}
	return *payload.Message, true
}

// IsUnauthorized reports whether err is (or wraps) a 401 response
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized
}
