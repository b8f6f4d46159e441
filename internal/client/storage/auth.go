package storage

import (
	"context"
	"time"
)

// AuthStorage хранит сессию клиента между запусками.
// Токены лежат в том виде, в каком сервер прислал их в cookie.
type AuthStorage interface {
	// SaveSession stores the current session, replacing the previous one
	SaveSession(ctx context.Context, s *Session) error

	// GetSession retrieves the current session.
	// Returns ErrAuthNotFound if nobody is logged in
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the current session (logout).
	// Returns ErrAuthNotFound if nobody is logged in
	DeleteSession(ctx context.Context) error

	// SavePending stores a registration waiting for OTP confirmation
	SavePending(ctx context.Context, p *PendingVerification) error

	// GetPending retrieves the registration waiting for OTP confirmation.
	// Returns ErrPendingNotFound if there is none
	GetPending(ctx context.Context) (*PendingVerification, error)

	// DeletePending removes the pending registration
	DeletePending(ctx context.Context) error
}

// Session сессия, полученная при входе
type Session struct {
	SavedAt      time.Time `json:"saved_at"`
	Server       string    `json:"server"`
	Kind         string    `json:"kind"` // user или admin
	PrincipalID  string    `json:"principal_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`  // значение cookie accessToken
	RefreshToken string    `json:"refresh_token"` // значение cookie refreshToken
}

// PendingVerification регистрация, ожидающая кода из письма
type PendingVerification struct {
	CreatedAt    time.Time `json:"created_at"`
	Server       string    `json:"server"`
	Email        string    `json:"email"`
	EncryptedOTP string    `json:"encrypted_otp"`
}
