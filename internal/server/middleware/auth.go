package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/handlers"
	"github.com/iudanet/rentspace/internal/server/session"
)

// Verifier проверяет пару токенов сессии
type Verifier interface {
	Verify(ctx context.Context, access, refresh string, kinds ...models.PrincipalKind) (session.Identity, error)
}

// AuthMiddleware создает middleware для проверки сессии из cookie.
// kinds ограничивает допустимые виды учетных записей; пустой список разрешает любой вид.
func AuthMiddleware(logger *slog.Logger, verifier Verifier, kinds ...models.PrincipalKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, refresh := handlers.SessionCookies(r)

			id, err := verifier.Verify(r.Context(), access, refresh, kinds...)
			if err != nil {
				handlers.WriteError(w, r, logger, err)
				return
			}

			logger.DebugContext(r.Context(), "principal authenticated",
				slog.String("kind", id.Kind.String()),
				slog.String("principal_id", id.ID))

			next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(r.Context(), id)))
		})
	}
}
