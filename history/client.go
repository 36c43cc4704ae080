package history

import (
	"context"

	"github.com/jrsteele09/go-gym-client/transport"
	"github.com/pkg/errors"
)

// Client calls the history endpoints of the gym API
type Client struct {
	http *transport.Client
}

func NewClient(c *transport.Client) *Client {
	return &Client{http: c}
}

// Register marks the exercise as done now
func (c *Client) Register(ctx context.Context, exerciseID int64) error {
	if exerciseID <= 0 {
		return errors.New("[Register] exercise id is required")
	}
	if err := c.http.Post(ctx, RouteHistory, RegisterRequest{ExerciseID: exerciseID}, nil); err != nil {
		return errors.Wrapf(err, "[Register] exercise %d", exerciseID)
	}
	return nil
}

// ByDay lists the signed-in user's history, newest day first
func (c *Client) ByDay(ctx context.Context) ([]ByDay, error) {
	var days []ByDay
	if err := c.http.Get(ctx, RouteHistory, &days); err != nil {
		return nil, errors.Wrap(err, "[ByDay]")
	}
	return days, nil
}
