// Package refresh keeps a signed-in session alive. Its Interceptor sits in the transport's
// response pipeline and, when the API answers 401, exchanges the stored refresh token for a
// new pair exactly once no matter how many requests failed together, replays every request
// that was waiting on it, and signs the user out when the session cannot be recovered.
package refresh

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-gym-client/apperr"
	"github.com/jrsteele09/go-gym-client/credentials"
	"github.com/jrsteele09/go-gym-client/internal/metrics"
	"github.com/jrsteele09/go-gym-client/sessions"
	"github.com/jrsteele09/go-gym-client/token"
	"github.com/jrsteele09/go-gym-client/transport"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const defaultRefreshTimeout = 30 * time.Second

// errSessionEnded rejects a refresh whose session was signed out while the call was in flight
var errSessionEnded = errors.New("session ended during token refresh")

// SignOutFunc ends the session. It is called when a 401 cannot be recovered.
type SignOutFunc func(ctx context.Context) error

// Refresher exchanges a refresh token for a new token pair. *sessions.Client implements it.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*sessions.RefreshResponse, error)
}

var _ Refresher = (*sessions.Client)(nil)

type outcome struct {
	token *oauth2.Token
	err   error
}

// pendingRequest is a request parked behind the in-flight refresh. done is buffered so the
// refresh never blocks on a waiter that gave up.
type pendingRequest struct {
	done chan outcome
}

// Interceptor owns the refresh state for one transport client. Create one per client.
type Interceptor struct {
	client         *transport.Client
	creds          *credentials.Manager
	refresher      Refresher
	refreshPath    string
	refreshTimeout time.Duration
	logger         zerolog.Logger
	metrics        *metrics.Metrics
	onRefresh      func(*oauth2.Token)

	regMu        sync.Mutex
	registration *registration

	mu         sync.Mutex
	refreshing bool
	queue      []*pendingRequest
	generation uint64 // bumped by Reset; a refresh only commits into the generation it started in
}

// InterceptorOption defines a function type to modify the Interceptor instance.
type InterceptorOption func(*Interceptor)

func WithLogger(logger zerolog.Logger) InterceptorOption {
	return func(i *Interceptor) {
		i.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) InterceptorOption {
	return func(i *Interceptor) {
		i.metrics = m
	}
}

// WithRefreshPath overrides the refresh endpoint (default /sessions/refresh-token)
func WithRefreshPath(path string) InterceptorOption {
	return func(i *Interceptor) {
		i.refreshPath = path
	}
}

// WithRefresher replaces the component that performs the refresh call
func WithRefresher(r Refresher) InterceptorOption {
	return func(i *Interceptor) {
		i.refresher = r
	}
}

// WithRefreshTimeout bounds the refresh call independently of the caller's context
func WithRefreshTimeout(timeout time.Duration) InterceptorOption {
	return func(i *Interceptor) {
		if timeout > 0 {
			i.refreshTimeout = timeout
		}
	}
}

// WithRefreshListener is called with every pair the interceptor obtains, after it is persisted
func WithRefreshListener(fn func(*oauth2.Token)) InterceptorOption {
	return func(i *Interceptor) {
		i.onRefresh = fn
	}
}

// New creates an Interceptor for client that reads and rotates tokens through creds
func New(client *transport.Client, creds *credentials.Manager, options ...InterceptorOption) (*Interceptor, error) {
	if client == nil {
		return nil, errors.New("[refresh.New] transport client is required")
	}
	if creds == nil {
		return nil, errors.New("[refresh.New] credentials manager is required")
	}

	i := &Interceptor{
		client:         client,
		creds:          creds,
		refreshPath:    sessions.RouteRefreshToken,
		refreshTimeout: defaultRefreshTimeout,
		logger:         zerolog.Nop(),
	}
	for _, opt := range options {
		opt(i)
	}
	if i.refresher == nil {
		i.refresher = sessions.NewClient(client, sessions.WithRefreshPath(i.refreshPath))
	}
	return i, nil
}

// registration is what actually sits in the transport pipeline; it binds the interceptor
// to the sign out of whoever registered it.
type registration struct {
	*Interceptor
	id      transport.InterceptorID
	signOut SignOutFunc
}

var _ transport.ResponseInterceptor = (*registration)(nil)

// Register attaches the interceptor to the transport pipeline. A previous registration is
// detached first so the pipeline never holds the interceptor twice. The returned func
// detaches this registration; calling it more than once, or after a newer Register, is a no-op.
func (i *Interceptor) Register(signOut SignOutFunc) (unregister func()) {
	i.regMu.Lock()
	defer i.regMu.Unlock()

	if i.registration != nil {
		i.client.Eject(i.registration.id)
	}
	reg := &registration{Interceptor: i, signOut: signOut}
	reg.id = i.client.Use(reg)
	i.registration = reg

	var once sync.Once
	return func() {
		once.Do(func() {
			i.regMu.Lock()
			defer i.regMu.Unlock()
			if i.registration == reg {
				i.client.Eject(reg.id)
				i.registration = nil
			}
		})
	}
}

// Registered reports whether the interceptor is currently in the pipeline
func (i *Interceptor) Registered() bool {
	i.regMu.Lock()
	defer i.regMu.Unlock()
	return i.registration != nil
}

// Pending reports how many requests are waiting on the in-flight refresh
func (i *Interceptor) Pending() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.queue)
}

// Reset ends the current session generation. A refresh still in flight will not persist its
// tokens or touch the Authorization header; it rejects its queue instead. Call it before
// clearing credentials on sign out.
func (i *Interceptor) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.generation++
}

// Refreshing reports whether a refresh call is outstanding
func (i *Interceptor) Refreshing() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.refreshing
}

func (r *registration) OnResponse(_ context.Context, resp *transport.Response) (*transport.Response, error) {
	return resp, nil
}

func (r *registration) OnError(ctx context.Context, req *transport.Request, err error) (*transport.Response, error) {
	// Already translated, e.g. by the replay of this very request
	if apperr.IsAppError(err) {
		return nil, err
	}

	var httpErr *transport.HTTPError
	if !errors.As(err, &httpErr) {
		r.logger.Debug().Err(err).Str("path", req.Path).Msg("request failed without a response")
		return nil, apperr.Unexpected(err)
	}

	if httpErr.StatusCode == http.StatusUnauthorized {
		return r.handleUnauthorized(ctx, req, httpErr)
	}

	if msg, ok := httpErr.Message(); ok {
		return nil, &apperr.Error{Message: msg, StatusCode: httpErr.StatusCode, Err: httpErr}
	}
	return nil, &apperr.Error{Message: apperr.MsgUnexpected, StatusCode: httpErr.StatusCode, Err: httpErr}
}

// handleUnauthorized decides under r.mu whether this 401 joins the refresh in flight, is
// replayed with a token issued after it went out, or leads a new refresh. Only the leader
// reads the refresh token.
func (r *registration) handleUnauthorized(ctx context.Context, req *transport.Request, cause *transport.HTTPError) (*transport.Response, error) {
	logger := r.logger.With().Str("method", req.Method).Str("path", req.Path).Logger()

	if req.Retried {
		logger.Warn().Msg("401 on a replayed request, signing out")
		r.metrics.ObserveRefresh(metrics.RefreshRetryExhausted)
		r.forceSignOut(ctx)
		return nil, apperr.SessionExpired(cause)
	}

	r.mu.Lock()
	if r.refreshing {
		pending := &pendingRequest{done: make(chan outcome, 1)}
		r.queue = append(r.queue, pending)
		r.mu.Unlock()

		r.metrics.ObserveQueued()
		logger.Debug().Msg("refresh in flight, request queued")
		return r.await(ctx, req, pending)
	}
	if current := r.client.Authorization(); current != "" && current != cause.Authorization {
		r.mu.Unlock()

		r.metrics.ObserveRefresh(metrics.RefreshAlreadyDone)
		logger.Debug().Msg("token changed since the request was sent, replaying")
		return r.client.Do(ctx, replay(req, token.NewPair(strings.TrimPrefix(current, "Bearer "), "")))
	}
	r.refreshing = true
	generation := r.generation
	r.mu.Unlock()

	refreshToken, err := r.creds.RefreshToken(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("unable to read refresh token")
		r.reject(r.settle(), err)
		return nil, apperr.Unexpected(err)
	}
	if refreshToken == "" {
		waiting := r.settle()
		logger.Debug().Int("queued", len(waiting)).Msg("401 without a refresh token, signing out")
		r.metrics.ObserveRefresh(metrics.RefreshNoToken)
		r.reject(waiting, cause)
		r.forceSignOut(ctx)
		return nil, apperr.SessionExpired(cause)
	}

	tok, err := r.refresh(ctx, refreshToken, generation)
	waiting := r.settle()

	switch {
	case errors.Is(err, errSessionEnded):
		logger.Debug().Int("queued", len(waiting)).Msg("signed out during token refresh, dropping the new pair")
		r.metrics.ObserveRefresh(metrics.RefreshAbandoned)
		r.reject(waiting, err)
		return nil, apperr.SessionExpired(err)
	case err != nil:
		logger.Warn().Err(err).Int("queued", len(waiting)).Msg("token refresh failed, signing out")
		r.metrics.ObserveRefresh(metrics.RefreshFailure)
		r.reject(waiting, err)
		r.forceSignOut(ctx)
		return nil, apperr.SessionExpired(err)
	}

	logger.Debug().Int("queued", len(waiting)).Msg("token refreshed")
	r.metrics.ObserveRefresh(metrics.RefreshSuccess)
	for _, p := range waiting {
		p.done <- outcome{token: tok}
	}
	return r.client.Do(ctx, replay(req, tok))
}

// refresh performs the refresh call, persists the new pair and makes it the default header.
// Cancelling one caller must not fail the refresh every queued request depends on, so the
// call only inherits ctx's values and is bounded by refreshTimeout. The pair is committed
// under r.mu and only if no Reset happened since generation.
func (r *registration) refresh(ctx context.Context, refreshToken string, generation uint64) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.refreshTimeout)
	defer cancel()

	resp, err := r.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.generation != generation {
		r.mu.Unlock()
		return nil, errSessionEnded
	}
	if err := r.creds.SaveTokens(ctx, resp.Token, resp.RefreshToken); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.client.SetAuthorization(resp.Token)
	r.mu.Unlock()

	tok := token.NewPair(resp.Token, resp.RefreshToken)
	if r.onRefresh != nil {
		r.onRefresh(tok)
	}
	return tok, nil
}

func (r *registration) reject(waiting []*pendingRequest, err error) {
	for _, p := range waiting {
		p.done <- outcome{err: err}
	}
}

// settle ends the refresh cycle and hands back the requests that were waiting on it
func (r *registration) settle() []*pendingRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	waiting := r.queue
	r.queue = nil
	r.refreshing = false
	return waiting
}

func (r *registration) await(ctx context.Context, req *transport.Request, pending *pendingRequest) (*transport.Response, error) {
	select {
	case out := <-pending.done:
		if out.err != nil {
			return nil, apperr.SessionExpired(out.err)
		}
		return r.client.Do(ctx, replay(req, out.token))
	case <-ctx.Done():
		return nil, apperr.Unexpected(ctx.Err())
	}
}

func (r *registration) forceSignOut(ctx context.Context) {
	r.metrics.ObserveSignOut()
	if r.signOut == nil {
		return
	}
	if err := r.signOut(context.WithoutCancel(ctx)); err != nil {
		r.logger.Error().Err(err).Msg("sign out failed")
	}
}

// replay copies req with the new bearer token and marks it so a second 401 is final
func replay(req *transport.Request, tok *oauth2.Token) *transport.Request {
	next := req.Clone()
	next.Retried = true
	token.SetBearer(next.Header, tok)
	return next
}
