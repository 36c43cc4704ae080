package exercises

import (
	"context"
	"net/url"
	"sync"

	"github.com/jrsteele09/go-gym-client/transport"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Client calls the catalogue endpoints of the gym API
type Client struct {
	http        *transport.Client
	concurrency int
}

type ClientOption func(*Client)

// WithConcurrency bounds how many groups Catalog fetches at once
func WithConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func NewClient(c *transport.Client, options ...ClientOption) *Client {
	ec := &Client{http: c, concurrency: defaultConcurrency}
	for _, opt := range options {
		opt(ec)
	}
	return ec
}

// Groups lists the muscle group names
func (c *Client) Groups(ctx context.Context) ([]string, error) {
	var groups []string
	if err := c.http.Get(ctx, RouteGroups, &groups); err != nil {
		return nil, errors.Wrap(err, "[Groups]")
	}
	return groups, nil
}

// ByGroup lists the exercises of one group
func (c *Client) ByGroup(ctx context.Context, group string) ([]Exercise, error) {
	var list []Exercise
	if err := c.http.Get(ctx, RouteExercisesByGroup+url.PathEscape(group), &list); err != nil {
		return nil, errors.Wrapf(err, "[ByGroup] %s", group)
	}
	return list, nil
}

func (c *Client) ByID(ctx context.Context, id int64) (*Exercise, error) {
	var e Exercise
	if err := c.http.Get(ctx, byIDPath(id), &e); err != nil {
		return nil, errors.Wrapf(err, "[ByID] %d", id)
	}
	return &e, nil
}

// Catalog fetches the groups and then every group's exercises concurrently. The first
// failure cancels the remaining fetches.
func (c *Client) Catalog(ctx context.Context) (*Catalog, error) {
	groups, err := c.Groups(ctx)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{Groups: groups, Exercises: make(map[string][]Exercise, len(groups))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, group := range groups {
		g.Go(func() error {
			list, err := c.ByGroup(gctx, group)
			if err != nil {
				return err
			}
			mu.Lock()
			catalog.Exercises[group] = list
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return catalog, nil
}
