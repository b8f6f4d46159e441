// Package router собирает HTTP API rentspace на chi.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/handlers"
	"github.com/iudanet/rentspace/internal/server/middleware"
)

// Handlers обработчики всех групп маршрутов
type Handlers struct {
	User      *handlers.UserHandler
	Admin     *handlers.AdminHandler
	Property  *handlers.PropertyHandler
	Favourite *handlers.FavouriteHandler
	Review    *handlers.ReviewHandler
	Support   *handlers.SupportHandler
	Chat      *handlers.ChatHandler
	Content   *handlers.ContentHandler
	Health    *handlers.HealthHandler
}

// Options параметры CORS и ограничения частоты запросов
type Options struct {
	CORSOrigins     []string
	RateLimit       int
	RateLimitWindow time.Duration
	// Metrics отдает /metrics; nil использует prometheus.DefaultGatherer
	Metrics http.Handler
}

// New создает корневой обработчик
func New(logger *slog.Logger, verifier middleware.Verifier, h Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingWithSkip(logger, []string{"/livez", "/healthz", "/metrics"}))
	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(middleware.MetricsMiddleware)
	// cookie сессии требуют AllowCredentials
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, logger, http.StatusNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, logger, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	metrics := opts.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	r.Get("/health", h.Health.Health)
	r.Get("/livez", h.Health.Livez)
	r.Get("/healthz", h.Health.Healthz)
	r.Handle("/metrics", metrics)

	auth := func(kinds ...models.PrincipalKind) func(http.Handler) http.Handler {
		return middleware.AuthMiddleware(logger, verifier, kinds...)
	}
	userOnly := auth(models.KindUser)
	adminOnly := auth(models.KindAdmin)
	anyKind := auth(models.KindUser, models.KindAdmin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(logger, opts.RateLimit, opts.RateLimitWindow))

		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.User.Register)
			r.Post("/verify", h.User.Verify)
			r.Post("/login", h.User.Login)
			r.Post("/refreshToken", h.User.RefreshToken)
			r.Get("/sendForgetOtp", h.User.SendForgetOTP)
			r.Get("/validate-otp", h.User.ValidateOTP)
			r.Put("/otpChangePassword", h.User.OTPChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(userOnly)
				r.Post("/logout", h.User.Logout)
				r.Get("/me", h.User.Me)
				r.Put("/updateProfile", h.User.UpdateProfile)
				r.Get("/currentLevel", h.User.CurrentLevel)
				r.Get("/settings", h.User.GetSettings)
				r.Put("/settings", h.User.UpdateSettings)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Admin.Login)
			r.Post("/refreshToken", h.Admin.RefreshToken)
			r.Get("/sendForgetOtp", h.Admin.SendForgetOTP)
			r.Get("/validate-otp", h.Admin.ValidateOTP)
			r.Put("/otpChangePassword", h.Admin.OTPChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/logout", h.Admin.Logout)
				r.Put("/users/{id}/active", h.Admin.SetUserActive)
			})
		})

		r.Route("/property", func(r chi.Router) {
			r.With(anyKind).Get("/", h.Property.Get)

			r.Group(func(r chi.Router) {
				r.Use(userOnly)
				r.Post("/", h.Property.Create)
				r.Put("/", h.Property.Update)
				r.Delete("/", h.Property.Delete)
				r.Get("/mine", h.Property.Mine)
				r.Get("/nearest", h.Property.Nearest)
			})
		})

		r.Route("/favourite", func(r chi.Router) {
			r.Use(userOnly)
			r.Get("/", h.Favourite.List)
			r.Put("/toggle", h.Favourite.Toggle)
		})

		r.Route("/review", func(r chi.Router) {
			r.With(userOnly).Post("/", h.Review.Create)
			r.With(anyKind).Get("/", h.Review.List)
		})

		r.Route("/support", func(r chi.Router) {
			r.With(userOnly).Post("/", h.Support.Create)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", h.Support.List)
				r.Put("/resolve", h.Support.Resolve)
				r.Post("/reply", h.Support.Reply)
			})
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(userOnly)
			r.Post("/", h.Chat.Send)
			r.Get("/", h.Chat.Room)
		})

		r.With(anyKind).Get("/terms", h.Content.GetTerms)
		r.With(adminOnly).Put("/terms", h.Content.SaveTerms)

		r.With(userOnly).Get("/paymentMethod", h.Content.GetPaymentMethod)
		r.With(userOnly).Put("/paymentMethod", h.Content.SavePaymentMethod)
	})

	return r
}
