// Package http exposes the prediction core over a JSON API. It is
// presentation glue: it gathers field values, calls into the core, and
// renders whatever the core returns.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps the standard library server with the middleware chain and a
// graceful stop.
type Server struct {
	server *http.Server
	config ServerConfig
	log    *zap.Logger
}

// ServerConfig holds the HTTP surface configuration.
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	AllowedOrigins []string
	RateLimit      int           // requests per client per refill window; 0 disables
	RateWindow     time.Duration // refill window for the limiter
}

// DefaultServerConfig returns the settings used when config.yaml leaves the
// http section empty.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        30 * time.Second,
		AllowedOrigins: []string{"*"},
		RateLimit:      60,
		RateWindow:     time.Minute,
	}
}

// NewServer builds the mux, registers the API routes, and wraps everything
// in the middleware chain.
func NewServer(config ServerConfig, api *API, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()
	api.Register(mux)

	middlewares := []Middleware{
		RecoveryMiddleware(log),
		LoggingMiddleware(log),
		SecurityHeadersMiddleware,
		CORSMiddleware(config.AllowedOrigins),
		TimeoutMiddleware(config.Timeout),
	}
	if config.RateLimit > 0 {
		window := config.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		limiter := NewRateLimiter(config.RateLimit, window)
		middlewares = append(middlewares, RateLimitMiddleware(limiter))
	}
	handler := Chain(middlewares...)(mux)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      handler,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
		log:    log,
	}
}

// Start blocks serving requests until Stop or a listener error.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests with a short deadline.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.log.Info("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}
