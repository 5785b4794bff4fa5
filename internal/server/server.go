package server

import (
	"net/http"
	"time"

	"eventify/internal/auth"
	"eventify/internal/events"
	"eventify/internal/events/api"
	"eventify/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Service        *events.EventService
	Store          api.Pinger
	Verifier       auth.Verifier
	Revocations    auth.RevocationList // nil disables logout revocation
	Logger         *logger.Logger
	AllowedOrigins []string
	PublicBaseURL  string
	// RequestTimeout bounds each handler. Keep it below the http.Server
	// WriteTimeout so the 504 can still be written.
	RequestTimeout time.Duration
}

const DefaultRequestTimeout = 10 * time.Second

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(d.Logger.Middleware)
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	guard := auth.Middleware(d.Verifier, d.Revocations, d.Logger)

	r.Get("/healthz", api.Health(d.Store, d.Logger))

	authHandler := &auth.Handler{Revocations: d.Revocations, Logger: d.Logger}
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(guard)
		r.Get("/me", authHandler.Me)
		r.Post("/logout", authHandler.Logout)
	})
	d.Logger.Info("ROUTER", "Auth routes registered under /api/auth")

	api.NewHandler(d.Service, d.Logger, d.PublicBaseURL).RegisterRoutes(r, guard)
	d.Logger.Info("ROUTER", "Event routes registered under /api/events")

	return r
}
