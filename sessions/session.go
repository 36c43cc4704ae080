package sessions

import (
	"github.com/jrsteele09/go-gym-client/users"
)

// Session is the signed-in state of the client: who is signed in and the tokens that
// authorise their requests. The access token is replaced on every refresh.
type Session struct {
	User         users.User
	AccessToken  string
	RefreshToken string
}

// Valid reports whether every part of the session is present
func (s Session) Valid() bool {
	return !s.User.IsZero() && s.AccessToken != "" && s.RefreshToken != ""
}

// SignInRequest is the body of POST /sessions
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse is the answer to POST /sessions
type SignInResponse struct {
	User         *users.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
}

// RefreshRequest is the body of POST /sessions/refresh-token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the rotated token pair
type RefreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}
