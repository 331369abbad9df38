// Package router sets up all HTTP routes and middleware chains for the
// outfitly API. Reads are open to anonymous callers; writes require a
// bearer token.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"outfitly/internal/handlers"
	"outfitly/internal/middleware"
)

// Deps are the handlers and settings the router wires together.
type Deps struct {
	Outfits   *handlers.Outfits
	JWTSecret []byte

	// Limiter throttles mutating requests. Nil disables throttling.
	Limiter *middleware.RateLimiter

	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Authenticate(d.JWTSecret))
	r.Use(middleware.Logger)

	r.NotFound(jsonStatus(http.StatusNotFound, `{"error":"not found"}`))
	r.MethodNotAllowed(jsonStatus(http.StatusMethodNotAllowed, `{"error":"method not allowed"}`))

	r.Get("/health", healthHandler)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	o := d.Outfits
	r.Route("/api", func(r chi.Router) {
		// Reads: anonymous callers see public outfits only.
		r.Get("/outfits", o.List)
		r.Get("/outfits/{id}", o.Get)
		r.Get("/categories", o.Categories)
		r.Get("/seasons", o.Seasons)
		r.Get("/colors", o.Colors)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/saved", o.Saved)

			r.Group(func(r chi.Router) {
				if d.Limiter != nil {
					r.Use(d.Limiter.Middleware)
				}
				r.Post("/outfits", o.Create)
				r.Put("/outfits/{id}", o.Update)
				r.Delete("/outfits/{id}", o.Delete)
				r.Post("/outfits/{id}/save", o.ToggleSave)
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

func jsonStatus(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}
