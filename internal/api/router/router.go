package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brightline-hq/brightline/internal/appointments"
	"github.com/brightline-hq/brightline/internal/availability"
	"github.com/brightline-hq/brightline/internal/demorequests"
	httpmiddleware "github.com/brightline-hq/brightline/internal/http/middleware"
	"github.com/brightline-hq/brightline/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AvailabilityHandler *availability.Handler
	DemoRequestHandler  *demorequests.Handler
	AppointmentHandler  *appointments.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Requests/sec per IP for the scheduling surface; 0 disables limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Scheduling API: org-scoped and rate limited. Consumed by the
	// marketing site's booking flow.
	r.Route("/scheduling", func(sched chi.Router) {
		if cfg.RateLimitPerSecond > 0 {
			sched.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}
		sched.Use(requireOrgID)

		if cfg.AvailabilityHandler != nil {
			sched.Get("/slots", cfg.AvailabilityHandler.Suggest)
		}
		if cfg.DemoRequestHandler != nil {
			sched.Post("/demo-requests", cfg.DemoRequestHandler.Create)
		}
		if cfg.AppointmentHandler != nil {
			sched.Post("/bookings", cfg.AppointmentHandler.Commit)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
