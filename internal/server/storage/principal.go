package storage

import (
	"context"

	"github.com/iudanet/rentspace/internal/models"
)

// PrincipalStore хранилище учетных данных одного вида (user или admin),
// которого достаточно для выдачи, проверки и ротации сессий.
//
// Изменение набора refresh токенов атомарно на уровне хранилища:
// AddRefreshToken только добавляет, RemoveRefreshToken удаляет ровно один токен,
// поэтому параллельные входы одного пользователя не затирают друг друга.
type PrincipalStore interface {
	// FindPrincipal returns the principal by id.
	// Returns ErrNotFound if it doesn't exist
	FindPrincipal(ctx context.Context, id string) (*models.Principal, error)

	// FindPrincipalByRefreshToken returns the principal whose refresh token set contains token.
	// Returns ErrNotFound if no principal holds it
	FindPrincipalByRefreshToken(ctx context.Context, token string) (*models.Principal, error)

	// AddRefreshToken appends token to the principal's refresh token set.
	// Returns ErrNotFound if the principal doesn't exist
	AddRefreshToken(ctx context.Context, principalID, token string) error

	// RemoveRefreshToken removes exactly this token from the principal's set.
	// Returns ErrTokenNotFound if the principal doesn't hold it
	RemoveRefreshToken(ctx context.Context, principalID, token string) error
}

// CredentialStore полный набор операций над учетными записями одного вида
type CredentialStore interface {
	PrincipalStore

	// CreatePrincipal stores a new principal.
	// Returns ErrAlreadyExists if the email is taken
	CreatePrincipal(ctx context.Context, p *models.Principal) error

	// GetPrincipalByEmail returns the principal by email.
	// Returns ErrNotFound if it doesn't exist
	GetPrincipalByEmail(ctx context.Context, email string) (*models.Principal, error)

	// UpdatePrincipal overwrites name, password and status flags.
	// Refresh tokens are not touched.
	// Returns ErrNotFound if the principal doesn't exist
	UpdatePrincipal(ctx context.Context, p *models.Principal) error

	// CountRefreshTokens returns the number of live sessions of this kind
	CountRefreshTokens(ctx context.Context) (int, error)
}
