// Package server exposes the chart pipeline and animation sessions over HTTP.
//
// # Routes
//
//	GET    /healthz
//	POST   /v1/render?format=svg|json|frames&frame=N
//	POST   /v1/stack?frame=N&order=&offset=
//	POST   /v1/sessions
//	POST   /v1/sessions/{id}/frames/{frame}?t=MS
//	GET    /v1/sessions/{id}/advance?t=MS&format=json|svg
//	GET    /v1/sessions/{id}/nearest?x=&y=
//	DELETE /v1/sessions/{id}
//
// Request bodies are chart documents, TOML or JSON according to the
// Content-Type header. Errors are JSON objects with a code and a message.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/chartmotion/pkg/pipeline"
	"github.com/matzehuels/chartmotion/pkg/session"
)

// Default server settings.
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultTimeout      = 30 * time.Second
	DefaultShutdownWait = 10 * time.Second
)

// Config configures a Server. Zero fields take defaults.
type Config struct {
	Addr       string
	Runner     *pipeline.Runner
	Sessions   session.Store
	SessionTTL time.Duration
	Logger     *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	logger *log.Logger
	router chi.Router
}

// New creates a server. A nil runner uses an uncached runner; nil sessions
// use an in-memory store.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewMemoryStore()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	s := &Server{cfg: cfg, logger: cfg.Logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(DefaultTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Post("/stack", s.handleStack)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/frames/{frame}", s.handleShowFrame)
				r.Get("/advance", s.handleAdvance)
				r.Get("/nearest", s.handleNearest)
				r.Delete("/", s.handleDeleteSession)
			})
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.logger, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// Expired sessions are evicted in the background while serving.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go session.Run(cleanupCtx, s.cfg.Sessions, session.DefaultCleanupInterval, s.logger)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownWait)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
