package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/iudanet/rentspace/internal/server/handlers"
)

// RateLimit ограничивает число запросов с одного IP за окно window.
// За прокси перед ним нужен chimiddleware.RealIP.
// requests <= 0 отключает ограничение.
func RateLimit(logger *slog.Logger, requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.WarnContext(r.Context(), "rate limit exceeded",
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))
			handlers.WriteJSON(w, logger, http.StatusTooManyRequests, "too many requests", nil)
		}),
	)
}
