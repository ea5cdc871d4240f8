package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/relayforge/chatrelay/internal/http/handlers"
	httpmiddleware "github.com/relayforge/chatrelay/internal/http/middleware"
	"github.com/relayforge/chatrelay/internal/messaging"
	"github.com/relayforge/chatrelay/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger           *logging.Logger
	MessagingHandler *messaging.Handler

	// Admin surface (optional)
	AdminConversations *handlers.AdminConversationsHandler
	AdminJWTSecret     string

	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.MessagingHandler.HealthCheck)
		public.Route("/webhooks", func(r chi.Router) {
			r.Post("/twilio", cfg.MessagingHandler.TwilioWebhook)
		})
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.AdminConversations != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
			admin.Get("/conversations/{userID}/turns", cfg.AdminConversations.GetTurns)
		})
	}

	return r
}
