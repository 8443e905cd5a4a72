// Package api exposes the HTTP surface: the admin plan/settings endpoints,
// the subscription projection, and the checkout return-URL capture.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/taskpro/taskpro/internal/billing"
	"github.com/taskpro/taskpro/internal/store"
)

// Config holds the server configuration.
type Config struct {
	ListenAddr    string
	AdminToken    string
	DefaultUserID string
}

// Server is the HTTP API server.
type Server struct {
	config  Config
	http    *http.Server
	store   *store.Store
	billing *billing.Manager
}

// NewServer creates a new Server.
func NewServer(cfg Config, st *store.Store, bm *billing.Manager) *Server {
	s := &Server{
		config:  cfg,
		store:   st,
		billing: bm,
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start begins listening for HTTP requests (non-blocking).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server", "err", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// routes builds the HTTP handler with all routes and middleware.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Subscription & billing
	mux.HandleFunc("GET /v1/subscription", s.handleGetSubscription)
	mux.HandleFunc("POST /v1/subscription/checkout", s.handleCheckout)
	mux.HandleFunc("POST /v1/subscription/cancel", s.handleCancelSubscription)
	mux.HandleFunc("GET /billing/return", s.handleBillingReturn)

	// Admin
	mux.HandleFunc("GET /v1/admin/plans", s.requireAdmin(s.handleListPlans))
	mux.HandleFunc("POST /v1/admin/plans", s.requireAdmin(s.handleCreatePlan))
	mux.HandleFunc("GET /v1/admin/plans/{id}", s.requireAdmin(s.handleGetPlan))
	mux.HandleFunc("PATCH /v1/admin/plans/{id}", s.requireAdmin(s.handleUpdatePlan))
	mux.HandleFunc("GET /v1/admin/settings", s.requireAdmin(s.handleGetSettings))
	mux.HandleFunc("PATCH /v1/admin/settings", s.requireAdmin(s.handleUpdateSettings))

	return chain(mux, recoveryMiddleware, requestIDMiddleware, loggerMiddleware, loggingMiddleware)
}

// handleHealth returns a health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
