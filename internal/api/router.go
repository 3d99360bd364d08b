// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayfarelabs/wayfare/internal/config"
	"github.com/wayfarelabs/wayfare/internal/middleware"
)

// Router assembles the HTTP handler tree.
type Router struct {
	handler *Handler
	cfg     *config.Config
}

// NewRouter creates a router around the handler set.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup builds the full middleware and route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.Security.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Internal-Key", "X-Request-ID"},
		MaxAge:         86400,
	}))
	r.Use(chimiddleware.Compress(5))

	// Scrape and probe endpoints stay outside the shared-secret gate.
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/", rt.handler.Health)
		r.Get("/live", rt.handler.HealthLive)
		r.Get("/ready", rt.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if !rt.cfg.RateLimit.Disabled {
			r.Use(httprate.LimitByIP(rt.cfg.RateLimit.RequestsPerMinute, time.Minute))
		}
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.InternalAuth(rt.cfg.Security.InternalSharedSecret))

		r.Get("/recommendations/{userID}", rt.handler.Recommendations)
		r.Get("/tours/{tourID}/similar", rt.handler.SimilarTours)

		batchRPS := rt.cfg.RateLimit.BatchPerSecond
		if rt.cfg.RateLimit.Disabled {
			batchRPS = 0
		}
		batchLimiter := middleware.NewBatchLimiter(batchRPS)
		r.With(batchLimiter.Middleware).Post("/recommendations/batch", rt.handler.BatchRecommendations)

		r.Get("/cache/stats", rt.handler.CacheStats)
		r.Post("/cache/invalidate", rt.handler.InvalidateCache)

		r.Post("/interactions", rt.handler.CreateInteraction)
		r.Get("/interactions/user/{userID}", rt.handler.UserInteractions)
		r.Get("/interactions/tour/{tourID}", rt.handler.TourInteractions)
		r.Get("/interactions/stats", rt.handler.InteractionStats)
		r.Delete("/interactions", rt.handler.DeleteInteractions)
	})

	return r
}
