package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/dental-receptionist/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/dental-receptionist/internal/http/middleware"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Scheduling         *handlers.SchedulingHandler
	Chat               *handlers.ChatHandler
	AdminAppointments  *handlers.AdminAppointmentsHandler
	Health             *handlers.HealthHandler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// PublicLimiter throttles chat and booking per client (optional).
	PublicLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	health := cfg.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	r.Get("/health", health.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	throttled := func(h http.HandlerFunc) http.Handler {
		if cfg.PublicLimiter == nil {
			return h
		}
		return httpmiddleware.RateLimit(cfg.PublicLimiter)(h)
	}

	if cfg.Scheduling != nil {
		r.Get("/calendar/business-hours", cfg.Scheduling.BusinessHours)
		r.Route("/api", func(api chi.Router) {
			api.Get("/slots", cfg.Scheduling.Slots)
			api.Get("/availability/today", cfg.Scheduling.Today)
			api.Get("/availability/next-days", cfg.Scheduling.NextDays)
			api.Method(http.MethodPost, "/appointments", throttled(cfg.Scheduling.Book))
		})
	}
	if cfg.Chat != nil {
		r.Method(http.MethodPost, "/chat", throttled(cfg.Chat.Message))
	}

	// Without a secret the admin routes are not mounted at all.
	if cfg.AdminAppointments != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin/appointments", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/", cfg.AdminAppointments.List)
			admin.Get("/{eventID}", cfg.AdminAppointments.Get)
			admin.Post("/{eventID}/cancel", cfg.AdminAppointments.Cancel)
			admin.Post("/{eventID}/reschedule", cfg.AdminAppointments.Reschedule)
		})
	}

	return r
}
