// Package apperr defines the user-presentable error returned by the gym client.
//
// Every failure that reaches a caller through the API clients is either an *Error or
// wraps one, so UIs can show MessageOf(err) without inspecting transport details.
package apperr

import (
	"errors"
)

const (
	MsgUnexpected     = "An unexpected error occurred. Please try again later."
	MsgSessionExpired = "Session expired. Please sign in again."
)

// ErrSessionExpired matches (via errors.Is) every error produced when the session could not
// be kept alive: no refresh token, a failed refresh, or a replay rejected again.
var ErrSessionExpired = errors.New("session expired")

// Error carries a message that is safe to show to the user. Err optionally holds the cause.
type Error struct {
	Message    string
	StatusCode int // HTTP status when the error came from the API, 0 otherwise
	Err        error
	expired    bool
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets session expiry errors match ErrSessionExpired while keeping their cause in the chain
func (e *Error) Is(target error) bool {
	return e.expired && target == ErrSessionExpired
}

// New returns a domain error with a server or caller supplied message
func New(message string) *Error {
	if message == "" {
		message = MsgUnexpected
	}
	return &Error{Message: message}
}

// FromResponse builds the domain error for a non-2xx API response
func FromResponse(statusCode int, message string) *Error {
	e := New(message)
	e.StatusCode = statusCode
	return e
}

// Unexpected wraps cause in the generic fallback error
func Unexpected(cause error) *Error {
	return &Error{Message: MsgUnexpected, Err: cause}
}

// SessionExpired returns the terminal session error. cause may be nil.
func SessionExpired(cause error) *Error {
	return &Error{Message: MsgSessionExpired, Err: cause, expired: true}
}

func IsAppError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// MessageOf returns the message to present for err
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return MsgUnexpected
}
