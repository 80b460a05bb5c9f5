package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/storefront/storefront-go/internal/middleware"
)

// RouterConfig collects everything NewRouter wires together.
type RouterConfig struct {
	Auth          *AuthHandler
	Profile       *ProfileHandler
	Health        *HealthHandler
	Authenticator middleware.Authenticator
	Log           *slog.Logger

	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the HTTP routes. Background work owned by the router,
// such as rate limiter sweeping, stops when ctx is cancelled.
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(cfg.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", middleware.AuthHeader},
		ExposedHeaders:   []string{middleware.AuthHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.Health.HandleLive)
	r.Get("/health/ready", cfg.Health.HandleReady)

	r.Route("/auth/user", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
			r.Post("/register", cfg.Auth.HandleRegister)
			r.Post("/login", cfg.Auth.HandleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.Authenticator, cfg.Log))
			r.Post("/logout", cfg.Auth.HandleLogout)
			r.Get("/refresh-token", cfg.Auth.HandleRefresh)
			r.Get("/profile", cfg.Profile.HandleGetProfile)
			r.Put("/profile", cfg.Profile.HandleUpdateProfile)
			r.Get("/me", cfg.Profile.HandleGetProfile)
		})
	})

	return r
}
