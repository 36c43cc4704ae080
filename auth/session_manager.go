// Package auth owns the signed-in session of the gym client: signing in and out, restoring a
// stored session at start up, profile changes, and the refresh interceptor that keeps the
// session alive.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-gym-client/credentials"
	gymerrors "github.com/jrsteele09/go-gym-client/internal/errors"
	"github.com/jrsteele09/go-gym-client/sessions"
	"github.com/jrsteele09/go-gym-client/token/refresh"
	"github.com/jrsteele09/go-gym-client/transport"
	"github.com/jrsteele09/go-gym-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// SessionListener is told about every change of the session, including sign out (an empty
// session). It is called without any lock held.
type SessionListener func(sessions.Session)

type SessionManager struct {
	client      *transport.Client
	creds       *credentials.Manager
	sessions    *sessions.Client
	users       *users.Client
	interceptor *refresh.Interceptor
	logger      zerolog.Logger
	listener    SessionListener

	regMu      sync.Mutex
	unregister func()

	mu      sync.RWMutex
	session sessions.Session
	loading bool

	ready     chan struct{}
	readyOnce sync.Once
}

// SessionManagerOption defines a function type to modify the SessionManager instance.
type SessionManagerOption func(*SessionManager)

func WithLogger(logger zerolog.Logger) SessionManagerOption {
	return func(m *SessionManager) {
		m.logger = logger
	}
}

func WithSessionListener(listener SessionListener) SessionManagerOption {
	return func(m *SessionManager) {
		m.listener = listener
	}
}

// WithRefreshInterceptor uses an interceptor built by the caller. Its refresh listener is
// the caller's business, so the in-memory tokens only change on sign in and restore.
func WithRefreshInterceptor(interceptor *refresh.Interceptor) SessionManagerOption {
	return func(m *SessionManager) {
		m.interceptor = interceptor
	}
}

// NewSessionManager creates a manager for client whose credentials live in creds. Nothing
// is registered or restored until Start.
func NewSessionManager(client *transport.Client, creds *credentials.Manager, options ...SessionManagerOption) (*SessionManager, error) {
	if client == nil {
		return nil, errors.New("[NewSessionManager] transport client is required")
	}
	if creds == nil {
		return nil, errors.New("[NewSessionManager] credentials manager is required")
	}

	m := &SessionManager{
		client:   client,
		creds:    creds,
		sessions: sessions.NewClient(client),
		users:    users.NewClient(client),
		logger:   zerolog.Nop(),
		loading:  true,
		ready:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(m)
	}

	if m.interceptor == nil {
		interceptor, err := refresh.New(client, creds,
			refresh.WithLogger(m.logger),
			refresh.WithRefreshListener(m.onRefresh),
		)
		if err != nil {
			return nil, errors.Wrap(err, "[NewSessionManager] failed to create refresh interceptor")
		}
		m.interceptor = interceptor
	}
	return m, nil
}

// Start registers the refresh interceptor with SignOut as its sign out and restores the
// stored session. Calling Start again before Close does not register a second time.
func (m *SessionManager) Start(ctx context.Context) error {
	m.regMu.Lock()
	if m.unregister == nil {
		m.unregister = m.interceptor.Register(m.SignOut)
	}
	m.regMu.Unlock()

	return m.restore(ctx)
}

// Close takes the refresh interceptor out of the pipeline. The session itself is kept.
func (m *SessionManager) Close() error {
	m.regMu.Lock()
	defer m.regMu.Unlock()
	if m.unregister != nil {
		m.unregister()
		m.unregister = nil
	}
	return nil
}

// restore loads the stored session without touching the network. An incomplete session
// is ignored. Loading ends however it turns out.
func (m *SessionManager) restore(ctx context.Context) error {
	defer m.finishLoading()

	s, ok, err := m.creds.LoadSession(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to load stored session")
		return errors.Wrap(err, "[Start] failed to restore session")
	}
	if !ok {
		m.logger.Debug().Msg("no stored session")
		return nil
	}

	m.client.SetAuthorization(s.AccessToken)
	m.setSession(s)
	m.logger.Info().Int64("user_id", s.User.ID).Msg("session restored")
	return nil
}

// SignIn authenticates with e-mail and password, stores the session and authorises every
// later request with it. Every failure is reported as ErrAuthenticationFailed.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) error {
	if err := validateSignIn(email, password); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	m.setLoading(true)
	defer m.setLoading(false)

	resp, err := m.sessions.SignIn(ctx, email, password)
	if err != nil {
		m.logger.Debug().Err(err).Str("email", email).Msg("sign in rejected")
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if err := resp.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	s := resp.Session()
	if err := m.creds.SaveSession(ctx, s); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	m.client.SetAuthorization(s.AccessToken)
	m.setSession(s)
	m.logger.Info().Int64("user_id", s.User.ID).Msg("signed in")
	return nil
}

// SignOut forgets the session: the stored user and tokens, the Authorization header and
// the in-memory state. A refresh still in flight is abandoned rather than bringing the
// tokens back. Signing out twice is harmless. The listener hears about it once.
func (m *SessionManager) SignOut(ctx context.Context) error {
	m.interceptor.Reset()
	m.client.ClearAuthorization()
	clearErr := m.creds.Clear(ctx)

	m.mu.Lock()
	wasSignedIn := m.session != (sessions.Session{})
	m.session = sessions.Session{}
	m.loading = false
	m.mu.Unlock()

	if wasSignedIn {
		m.logger.Info().Msg("signed out")
		m.notify(sessions.Session{})
	}
	if clearErr != nil {
		return errors.Wrap(clearErr, "[SignOut] failed to clear stored credentials")
	}
	return nil
}

// SignUp creates an account. The new user still has to sign in.
func (m *SessionManager) SignUp(ctx context.Context, req users.SignUpRequest) (*users.User, error) {
	created, err := m.users.Register(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "[SignUp]")
	}
	return created, nil
}

// UpdateUser sends the profile change and, once accepted, gives the signed-in user the new
// name. The rest of the stored profile is kept as it was.
func (m *SessionManager) UpdateUser(ctx context.Context, update users.ProfileUpdate) error {
	current, ok := m.signedInUser()
	if !ok {
		return ErrNotAuthenticated
	}
	if _, err := m.users.UpdateProfile(ctx, update); err != nil {
		return errors.Wrap(err, "[UpdateUser]")
	}

	updated := mergeProfile(current, update)
	if err := m.creds.SaveUser(ctx, &updated); err != nil {
		return errors.Wrap(err, "[UpdateUser] failed to store user")
	}
	m.replaceUser(updated)
	return nil
}

// UpdateUserAvatar uploads a new avatar and takes the user the API answers with
func (m *SessionManager) UpdateUserAvatar(ctx context.Context, avatar users.Avatar) (*users.User, error) {
	current, ok := m.signedInUser()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	updated, err := m.users.UpdateAvatar(ctx, avatar)
	if err != nil {
		return nil, errors.Wrap(err, "[UpdateUserAvatar]")
	}
	if updated.IsZero() || updated.ID != current.ID {
		return nil, errors.Wrap(gymerrors.ErrInvalidResponse, "[UpdateUserAvatar] response is not the signed-in user")
	}
	if err := m.creds.SaveUser(ctx, updated); err != nil {
		return nil, errors.Wrap(err, "[UpdateUserAvatar] failed to store user")
	}
	m.replaceUser(*updated)
	return updated, nil
}

// IsLoading is true until the stored session has been restored and while a sign in runs
func (m *SessionManager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Ready is closed once the first restore has finished
func (m *SessionManager) Ready() <-chan struct{} {
	return m.ready
}

func (m *SessionManager) Session() sessions.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// User returns the signed-in user, or the zero user when signed out
func (m *SessionManager) User() users.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.User
}

func (m *SessionManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Valid()
}

// Interceptor is the refresh interceptor the manager registers on Start
func (m *SessionManager) Interceptor() *refresh.Interceptor {
	return m.interceptor
}

func (m *SessionManager) onRefresh(tok *oauth2.Token) {
	m.mu.Lock()
	if !m.session.Valid() {
		m.mu.Unlock()
		return
	}
	m.session.AccessToken = tok.AccessToken
	m.session.RefreshToken = tok.RefreshToken
	s := m.session
	m.mu.Unlock()

	m.notify(s)
}

func (m *SessionManager) signedInUser() (users.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.User, m.session.Valid()
}

// replaceUser swaps the profile of the current session. A sign out that happened in the
// meantime wins.
func (m *SessionManager) replaceUser(u users.User) {
	m.mu.Lock()
	if m.session.User.ID != u.ID {
		m.mu.Unlock()
		return
	}
	m.session.User = u
	s := m.session
	m.mu.Unlock()

	m.notify(s)
}

func (m *SessionManager) setSession(s sessions.Session) {
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()

	m.notify(s)
}

func (m *SessionManager) setLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = loading
}

func (m *SessionManager) finishLoading() {
	m.setLoading(false)
	m.readyOnce.Do(func() { close(m.ready) })
}

func (m *SessionManager) notify(s sessions.Session) {
	if m.listener != nil {
		m.listener(s)
	}
}
