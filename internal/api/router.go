// Package api wires the HTTP surface: the Telegram webhook, health probes,
// the metrics scrape endpoint, and the operator API.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/reelgrab/internal/api/handler"
	mw "github.com/iconidentify/reelgrab/internal/api/middleware"
	"github.com/iconidentify/reelgrab/internal/metrics"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	webhookHandler *handler.WebhookHandler,
	healthHandler *handler.HealthHandler,
	eventHandler *handler.EventHandler,
	jobHandler *handler.JobHandler,
	apiKey string,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(middleware.Timeout(5 * time.Minute))

	// Telegram webhook (authenticated by its own secret token header)
	r.Post("/webhook", webhookHandler.Receive)

	// Health and scrape endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)
	r.Method("GET", "/metrics", metrics.Handler())

	// Operator API (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(apiKey))

		r.Get("/stats", healthHandler.Stats)

		r.Get("/events", eventHandler.List)
		r.Get("/events/stream", eventHandler.Stream)

		r.Get("/jobs", jobHandler.List)
		r.Get("/jobs/{jobID}", jobHandler.Get)
	})

	return r
}
