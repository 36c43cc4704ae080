package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/jrsteele09/go-gym-client/transport"
)

const (
	RouteSessions     = "/sessions"
	RouteRefreshToken = "/sessions/refresh-token"
)

// ErrIncompleteSignIn is returned by Validate for a sign-in answer missing a part
var ErrIncompleteSignIn = errors.New("sign-in response is incomplete")

// Client calls the session endpoints of the gym API
type Client struct {
	http        *transport.Client
	refreshPath string
}

type ClientOption func(*Client)

// WithRefreshPath overrides the refresh endpoint (default /sessions/refresh-token)
func WithRefreshPath(path string) ClientOption {
	return func(c *Client) {
		c.refreshPath = path
	}
}

func NewClient(c *transport.Client, options ...ClientOption) *Client {
	sc := &Client{http: c, refreshPath: RouteRefreshToken}
	for _, opt := range options {
		opt(sc)
	}
	return sc
}

// SignIn exchanges e-mail and password for a session. It goes through the interceptor
// pipeline so API errors come back as domain errors.
func (c *Client) SignIn(ctx context.Context, email, password string) (*SignInResponse, error) {
	var resp SignInResponse
	if err := c.http.Post(ctx, RouteSessions, SignInRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new token pair. It bypasses the interceptors:
// a failing refresh must never trigger another refresh.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	req, err := transport.NewJSONRequest(http.MethodPost, c.refreshPath, RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	httpResp, err := c.http.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	var resp RefreshResponse
	if err := httpResp.DecodeJSON(&resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.RefreshToken == "" {
		return nil, fmt.Errorf("%w: refresh response is missing a token", gymerrors.ErrInvalidRefreshToken)
	}
	return &resp, nil
}

// Validate checks the response carries a user, an access token and a refresh token
func (r *SignInResponse) Validate() error {
	if r == nil || r.User.IsZero() || r.Token == "" || r.RefreshToken == "" {
		return ErrIncompleteSignIn
	}
	return nil
}

// Session converts a validated sign-in answer into a Session
func (r *SignInResponse) Session() Session {
	return Session{User: *r.User, AccessToken: r.Token, RefreshToken: r.RefreshToken}
}
