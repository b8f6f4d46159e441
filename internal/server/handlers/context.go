package handlers

import (
	"context"

	"github.com/iudanet/rentspace/internal/server/session"
)

// contextKey тип для ключей контекста
type contextKey string

// IdentityKey ключ для учетной записи в контексте запроса
const IdentityKey contextKey = "identity"

// WithIdentity кладет проверенную учетную запись в контекст
func WithIdentity(ctx context.Context, id session.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFrom достает учетную запись, положенную AuthMiddleware
func IdentityFrom(ctx context.Context) (session.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(session.Identity)
	return id, ok && id.ID != ""
}
