// Package server is an in-memory implementation of the gym REST API. It backs the
// integration tests and the gymstub binary used for local development.
package server

import (
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-gym-client/exercises"
	"github.com/jrsteele09/go-gym-client/history"
	"github.com/jrsteele09/go-gym-client/internal/config"
	"github.com/jrsteele09/go-gym-client/server/refreshtokens"
	"github.com/jrsteele09/go-gym-client/token"
	"github.com/jrsteele09/go-gym-client/users"
	"github.com/rs/zerolog"
)

// Repos is the storage the stub API serves from
type Repos struct {
	Users         users.UserRepo
	Exercises     exercises.Repo
	History       history.Repo
	RefreshTokens refreshtokens.Repo
}

type Server struct {
	env        string
	mux        *http.ServeMux
	routes     []string
	logger     zerolog.Logger
	repos      Repos
	signer     token.Signer
	refresh    *refreshtokens.Manager
	accessTTL  time.Duration
	location   *time.Location
	media      fs.FS
	demoEmail  string
	demoPasswd string

	usersLock sync.Mutex

	avatarsLock sync.RWMutex
	avatars     map[string]storedAvatar
}

type ServerOption func(*Server)

func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAccessTokenTTL overrides the configured access token lifetime
func WithAccessTokenTTL(ttl time.Duration) ServerOption {
	return func(s *Server) {
		s.accessTTL = ttl
	}
}

// WithMedia serves exercise thumbnails and demos from fsys (paths exercise/thumb/<file>
// and exercise/demo/<file>)
func WithMedia(fsys fs.FS) ServerOption {
	return func(s *Server) {
		s.media = fsys
	}
}

// WithLocation sets the time zone history is grouped by (default UTC)
func WithLocation(loc *time.Location) ServerOption {
	return func(s *Server) {
		s.location = loc
	}
}

// WithDemoUser creates an account at start up so the API can be used straight away
func WithDemoUser(email, password string) ServerOption {
	return func(s *Server) {
		s.demoEmail = email
		s.demoPasswd = password
	}
}

func New(cfg config.Config, repos Repos, options ...ServerOption) (*Server, error) {
	if repos.Users == nil || repos.Exercises == nil || repos.History == nil || repos.RefreshTokens == nil {
		return nil, fmt.Errorf("[server.New] every repo is required")
	}
	signer, err := token.NewHMACSigner(cfg.GetStubSigningKey(), cfg.GetAppName())
	if err != nil {
		return nil, fmt.Errorf("[server.New] failed to create signer: %w", err)
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		logger:    zerolog.Nop(),
		repos:     repos,
		signer:    signer,
		refresh:   refreshtokens.NewManager(repos.RefreshTokens, cfg.GetStubRefreshTokenExpiry()),
		accessTTL: cfg.GetStubAccessTokenExpiry(),
		location:  time.UTC,
		avatars:   make(map[string]storedAvatar),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.demoEmail != "" {
		if err := s.createDemoUser(s.demoEmail, s.demoPasswd); err != nil {
			return nil, fmt.Errorf("[server.New] failed to create the demo user: %w", err)
		}
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered route patterns in registration order
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1], "")
		} else {
			s.logRoute("", parts[0], "")
		}
	}
}

func (s *Server) logRoute(method, path, problem string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	line := fmt.Sprintf("[%-19s] %s", color+paddedMethod+ResetColor, path)
	if problem != "" {
		line += " " + Red + problem + ResetColor
	}
	s.logger.Info().Msg(line)
}
