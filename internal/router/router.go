// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// review API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reviewdesk/internal/handlers"
	"reviewdesk/internal/metrics"
	"reviewdesk/internal/middleware"
	"reviewdesk/internal/models"
)

// Options carries the optional pieces of the router.
type Options struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer     // serves /metrics when set
	Limiter  *middleware.RateLimiter // rate limits /api when set
}

// New creates and returns the configured Chi router.
func New(api *handlers.API, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Identify)
	r.Use(middleware.Logger(opts.Metrics))

	r.Get("/health", healthHandler)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIHeaders)
		r.Use(middleware.RequireIdentity)
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}

		r.Get("/projects", api.ListProjects)
		r.With(middleware.RequireRole(models.RoleAdmin)).Post("/projects", api.CreateProject)

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Get("/", api.GetProject)

			// Project structure is managed by admins.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Put("/", api.UpdateProject)
				r.Delete("/", api.DeleteProject)
				r.Post("/members", api.AddMember)
				r.Delete("/members/{userID}", api.RemoveMember)
				r.Post("/pages", api.CreatePage)
			})

			r.Get("/pages", api.ListPages)

			// Workflow actions check project roles in the handlers.
			r.Route("/pages/{pageID}", func(r chi.Router) {
				r.Get("/", api.GetPage)
				r.With(middleware.RequireRole(models.RoleAdmin)).Patch("/", api.RenamePage)
				r.With(middleware.RequireRole(models.RoleAdmin)).Delete("/", api.DeletePage)
				r.Put("/seo", api.UploadSEO)
				r.Put("/content", api.UploadContent)
				r.Post("/approve", api.Approve)
				r.Post("/reject", api.Reject)
				r.Post("/revision", api.RequestRevision)
				r.Post("/reopen", api.Reopen)
				r.Post("/rescore", api.Rescore)
				r.Get("/analysis", api.GetAnalysis)
				r.Get("/seo-breakdown", api.SEOBreakdown)
				r.Get("/history", api.History)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
