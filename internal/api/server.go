// Package api provides the Juniper Lessons HTTP API: lesson generation,
// deck downloads, calendar lookups and a progress websocket.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/FocuswithJustin/JuniperLessons/core/sqlite"
	"github.com/FocuswithJustin/JuniperLessons/internal/config"
	"github.com/FocuswithJustin/JuniperLessons/internal/logging"
	"github.com/FocuswithJustin/JuniperLessons/internal/server"
)

// Version is reported by the service info and health endpoints.
const Version = "0.1.0"

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// Server serves the API.
type Server struct {
	cfg       *config.Config
	deps      Deps
	hub       *Hub
	limiter   *RateLimiter
	wsLimiter *WebSocketRateLimiter
	started   time.Time
}

// New creates a server. The websocket hub is not running until Start (or
// the caller's own go hub.Run) is called.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	s := &Server{
		cfg:       cfg,
		deps:      deps,
		hub:       NewHub(),
		wsLimiter: NewWebSocketRateLimiter(),
		started:   time.Now(),
	}
	if cfg.RateLimit.Requests > 0 {
		s.limiter = NewRateLimiter(rateLimitConfig(cfg))
	}
	return s, nil
}

// Hub returns the progress hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// Handler builds the routed handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()

	if s.limiter != nil {
		handler = s.limiter.Middleware(handler)
	}

	handler = server.CORSMiddlewareWithConfig(server.CORSConfig{
		AllowedOrigins: s.cfg.AllowedOrigins,
	}, handler)
	handler = server.TimingMiddleware(handler)

	// Logging is outermost so every response carries a request ID.
	return logging.CombinedMiddleware(handler)
}

// routes configures all HTTP routes. Method checks happen in the handlers
// so that errors use the JSON envelope.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	page := server.PageCSPConfig()
	api := server.APICSPConfig()

	handle := func(pattern string, csp server.CSPConfig, h http.HandlerFunc) {
		mux.Handle(pattern, server.SecurityHeadersWithCSP(csp, h))
	}

	handle("/", page, s.handleRoot)
	handle("/health", api, s.handleHealth)
	handle("/api/generate", api, s.handleGenerate)
	handle("/api/pptx/{filename}", api, s.handlePPTX)
	handle("/api/festivals", api, s.handleFestivals)
	handle("/api/congregations", api, s.handleCongregations)
	handle("/api/congregations/{id}", api, s.handleCongregation)
	handle("/api/samples", api, s.handleSamples)
	handle("/api/decks", api, s.handleDecks)
	handle("/api/decks/{id}", api, s.handleDeck)
	handle("/api/decks/{id}/lesson", api, s.handleDeckLesson)
	mux.Handle("/ws", SecureWebSocketHandler(s.hub,
		DefaultWebSocketSecurityConfig(s.cfg.AllowedOrigins), s.wsLimiter))

	return mux
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)
	go s.sweep(hubCtx, sweepInterval)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.logStartup()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sweep drops expired code search results every interval until ctx ends.
func (s *Server) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pruneCaches()
		}
	}
}

func (s *Server) pruneCaches() int {
	n := s.deps.Search.Prune()
	if n > 0 {
		logging.Debug("pruned search cache", "removed", n)
	}
	return n
}

func (s *Server) logStartup() {
	logging.ServerStartup("lesson_api", "http", s.cfg.Port,
		"websocket_protocol", "ws",
		"decks_dir", server.AbsPath(s.deps.Decks.Dir()),
		"sqlite_driver", sqlite.DriverType(),
		"search_repo", s.cfg.Search.Repo)

	if s.limiter != nil {
		logging.Info("rate limiting enabled",
			"requests_per_minute", s.cfg.RateLimit.Requests,
			"burst_size", s.limiter.config.BurstSize)
	}

	if len(s.cfg.AllowedOrigins) > 0 {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "restricted",
			"allowed_origins_count", len(s.cfg.AllowedOrigins))
	} else {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "permissive",
			"note", "allowing all origins (*) - consider restricting for production")
	}
}
