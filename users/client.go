package users

import (
	"context"
	"io"
	"net/http"

	"github.com/jrsteele09/go-gym-client/transport"
	"github.com/pkg/errors"
)

const (
	RouteUsers  = "/users"
	RouteAvatar = "/users/avatar"

	avatarField = "avatar"
)

// Avatar is an image uploaded as the multipart "avatar" part
type Avatar struct {
	FileName    string
	ContentType string
	Content     io.Reader
}

// Client calls the account endpoints of the gym API
type Client struct {
	http *transport.Client
}

func NewClient(c *transport.Client) *Client {
	return &Client{http: c}
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req SignUpRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var created User
	if err := c.http.Post(ctx, RouteUsers, req, &created); err != nil {
		return nil, errors.Wrap(err, "[Register]")
	}
	return &created, nil
}

// UpdateProfile sends the new name (and optionally a password change). The API may answer
// with an empty body, in which case nil is returned.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	var updated User
	if err := c.http.Put(ctx, RouteUsers, update, &updated); err != nil {
		return nil, errors.Wrap(err, "[UpdateProfile]")
	}
	if updated.IsZero() {
		return nil, nil
	}
	return &updated, nil
}

// UpdateAvatar uploads a new avatar and returns the user with the new avatar file name
func (c *Client) UpdateAvatar(ctx context.Context, avatar Avatar) (*User, error) {
	if avatar.Content == nil || avatar.FileName == "" {
		return nil, errors.New("[UpdateAvatar] avatar file is required")
	}
	req, err := transport.NewMultipartRequest(http.MethodPatch, RouteAvatar, avatarField, avatar.FileName, avatar.ContentType, avatar.Content)
	if err != nil {
		return nil, errors.Wrap(err, "[UpdateAvatar]")
	}
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "[UpdateAvatar]")
	}
	var updated User
	if err := resp.DecodeJSON(&updated); err != nil {
		return nil, errors.Wrap(err, "[UpdateAvatar]")
	}
	return &updated, nil
}
