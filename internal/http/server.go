// Package http provides the HTTP server shared by the three services.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReadinessCheck probes one dependency of the service. A nil error means
// the dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// Server represents the HTTP server for one service. Route registration
// happens through Router before Start is called.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
	checks map[string]ReadinessCheck
}

// Option configures the Server.
type Option func(*Server)

// WithDatabase adds a readiness check that pings the relational database.
func WithDatabase(db *sql.DB) Option {
	return func(s *Server) {
		s.checks["database"] = func(ctx context.Context) error {
			if db == nil {
				return fmt.Errorf("database connection is nil")
			}
			return db.PingContext(ctx)
		}
	}
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) {
		s.checks[name] = check
	}
}

// WithMiddleware appends middlewares to the router.
func WithMiddleware(middlewares ...gin.HandlerFunc) Option {
	return func(s *Server) {
		for _, middleware := range middlewares {
			if middleware != nil {
				s.router.Use(middleware)
			}
		}
	}
}

// WithWriteTimeout overrides the server write timeout. A zero duration
// disables it, which long-lived websocket sessions require.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.server.WriteTimeout = timeout
	}
}

// NewServer creates a new HTTP server
func NewServer(host string, port int, logger *slog.Logger, opts ...Option) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))

	server := &Server{
		router: router,
		logger: logger,
		checks: make(map[string]ReadinessCheck),
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(server)
	}

	router.GET("/health", server.healthHandler)
	router.GET("/ready", server.readinessHandler)

	return server
}

// Router returns the underlying router for route registration.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler runs every registered readiness check and reports the
// state of each component.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string, len(s.checks))
	ready := true

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			components[name] = "error"
			ready = false
			continue
		}
		components[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
