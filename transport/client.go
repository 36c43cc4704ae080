// Package transport is the HTTP layer of the gym client: a base URL, shared default
// headers (including the bearer Authorization header) and a response interceptor pipeline.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-gym-client/internal/metrics"
	"github.com/rs/zerolog"
)

const defaultTimeout = 15 * time.Second

// ResponseInterceptor observes every response that goes through Client.Do. OnResponse is
// called for 2xx responses, OnError for everything else. Either may turn a failure into a
// response or a response into a failure.
type ResponseInterceptor interface {
	OnResponse(ctx context.Context, resp *Response) (*Response, error)
	OnError(ctx context.Context, req *Request, err error) (*Response, error)
}

// InterceptorID identifies a registered interceptor so it can be ejected
type InterceptorID uint64

type registeredInterceptor struct {
	id          InterceptorID
	interceptor ResponseInterceptor
}

// Client issues requests against one API base URL. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	mu           sync.RWMutex
	headers      http.Header
	interceptors []registeredInterceptor
	nextID       InterceptorID
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client (its Timeout is kept as is)
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every round trip, including the token refresh call
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHeader adds a default header sent with every request
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// New creates a Client for baseURL (e.g. "http://localhost:3333")
func New(baseURL string, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[transport.New] base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("[transport.New] invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("[transport.New] unsupported scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zerolog.Nop(),
		headers:    make(http.Header),
	}
	c.headers.Set(HeaderContentType, ContentTypeJSON)
	c.headers.Set("Accept", ContentTypeJSON)

	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetAuthorization makes every following request carry "Bearer <token>"
func (c *Client) SetAuthorization(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set(HeaderAuthorization, "Bearer "+token)
}

// ClearAuthorization removes the default Authorization header
func (c *Client) ClearAuthorization() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Del(HeaderAuthorization)
}

// Authorization returns the current default Authorization header value ("" when unset)
func (c *Client) Authorization() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Get(HeaderAuthorization)
}

// Use appends interceptor to the response pipeline
func (c *Client) Use(interceptor ResponseInterceptor) InterceptorID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.interceptors = append(c.interceptors, registeredInterceptor{id: c.nextID, interceptor: interceptor})
	return c.nextID
}

// Eject removes a previously registered interceptor. Unknown ids are ignored.
func (c *Client) Eject(id InterceptorID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, ri := range c.interceptors {
		if ri.id == id {
			c.interceptors = append(c.interceptors[:i:i], c.interceptors[i+1:]...)
			return
		}
	}
}

// InterceptorCount reports how many interceptors are registered
func (c *Client) InterceptorCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.interceptors)
}

// Do sends req and runs the result through the registered interceptors in order
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.Send(ctx, req)

	c.mu.RLock()
	chain := make([]registeredInterceptor, len(c.interceptors))
	copy(chain, c.interceptors)
	c.mu.RUnlock()

	for _, ri := range chain {
		if err != nil {
			resp, err = ri.interceptor.OnError(ctx, req, err)
		} else {
			resp, err = ri.interceptor.OnResponse(ctx, resp)
		}
	}
	return resp, err
}

// Send performs a single round trip without running interceptors. Non-2xx responses come
// back as *HTTPError.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}

	requestID := httpReq.Header.Get(HeaderRequestID)
	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(req.Method, 0, time.Since(start))
		c.logger.Debug().Err(err).Str("method", req.Method).Str("path", req.Path).Str("request_id", requestID).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	took := time.Since(start)
	c.metrics.ObserveRequest(req.Method, httpResp.StatusCode, took)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.Path, err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", httpResp.StatusCode).
		Str("request_id", requestID).
		Dur("took", took).
		Bool("retried", req.Retried).
		Msg("request")

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &HTTPError{
			StatusCode:    httpResp.StatusCode,
			Body:          body,
			Request:       req,
			Authorization: httpReq.Header.Get(HeaderAuthorization),
		}
	}
	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: body, Request: req}, nil
}

func (c *Client) build(ctx context.Context, req *Request) (*http.Request, error) {
	target := c.baseURL.String() + "/" + strings.TrimLeft(req.Path, "/")
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("[transport] invalid request path %q: %w", req.Path, err)
	}
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("[transport] build %s %s: %w", req.Method, req.Path, err)
	}

	c.mu.RLock()
	for k, v := range c.headers {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	c.mu.RUnlock()

	// Request specific headers win over the defaults, including a replay's Authorization
	for k, v := range req.Header {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	if httpReq.Header.Get(HeaderRequestID) == "" {
		httpReq.Header.Set(HeaderRequestID, uuid.NewString())
	}
	return httpReq, nil
}

// Get issues a GET and decodes the JSON response into out (which may be nil)
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, in, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	req, err := NewJSONRequest(method, path, in)
	if err != nil {
		return err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.DecodeJSON(out)
}
