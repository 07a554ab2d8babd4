package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rdelacroix/inkwell/internal/article"
	"github.com/rdelacroix/inkwell/internal/auth"
	"github.com/rdelacroix/inkwell/internal/infrastructure/config"
	"github.com/rdelacroix/inkwell/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.ServerConfig
	Logger   *logging.Logger
	Users    auth.UserRepository
	Tokens   auth.TokenRepository
	Articles article.Repository
	Version  string
}

// Server is the HTTP API server for Inkwell.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg      config.ServerConfig
	logger   *logging.Logger
	users    auth.UserRepository
	tokens   auth.TokenRepository
	articles article.Repository
	version  string
	server   *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("token repository is required")
	}
	if deps.Articles == nil {
		return nil, fmt.Errorf("article repository is required")
	}

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		users:    deps.Users,
		tokens:   deps.Tokens,
		articles: deps.Articles,
		version:  deps.Version,
	}, nil
}

// Handler returns the fully-wired router without starting a listener.
// Useful for embedding the API in another server or under httptest.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; the server is stopped
// with Close().
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}

	return nil
}
