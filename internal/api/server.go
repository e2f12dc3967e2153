// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api assembles the chi router and owns the [http.Server].

Routes:

	GET  /health, /ready, /metrics      probes and Prometheus
	     /api/v1/auth                   register, login, logout
	     /api/v1/me                     profile, reading and question history
	     /api/v1/session                card selection and its event stream
	     /api/v1/readings               daily and question readings
	     /api/v1/cards                  the card catalog
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/arcana/internal/platform/config"
	"github.com/taibuivan/arcana/internal/platform/constants"
	"github.com/taibuivan/arcana/internal/platform/middleware"
	"github.com/taibuivan/arcana/internal/tarot/workspace"
	"github.com/taibuivan/arcana/internal/users/auth"
)

// Handlers are the route groups built in main.
type Handlers struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc
	Metrics   http.Handler
	Auth      *auth.Handler
	Workspace *workspace.Handler
}

// Server is the HTTP front of the process.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	log        *slog.Logger
}

// NewServer builds the router. ctx bounds background middleware work such
// as the rate limiter sweep.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	router := chi.NewRouter()

	router.Use(
		middleware.RequestID(),
		middleware.StructuredLogger(log),
		chimw.Timeout(constants.GlobalRequestTimeout),
		middleware.RateLimit(ctx),
		middleware.PanicRecovery(log),
		middleware.Authenticate(verifier),
		middleware.CORS(cfg),
		chimw.CleanPath,
	)

	router.Get("/health", h.Liveness)
	router.Get("/ready", h.Readiness)
	router.Method(http.MethodGet, "/metrics", h.Metrics)

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Mount("/auth", h.Auth.Routes())
		v1.Mount("/me", h.Workspace.MeRoutes())
		v1.Mount("/session", h.Workspace.SessionRoutes())
		v1.Mount("/readings", h.Workspace.ReadingRoutes())
		v1.Mount("/cards", h.Workspace.CardRoutes())
	})

	return &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
		},
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests for up to timeout. Event streams are
// hijacked connections and end when their workspace closes.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
