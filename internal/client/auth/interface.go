package auth

import (
	"context"

	"github.com/iudanet/rentspace/internal/client/api"
	pkgapi "github.com/iudanet/rentspace/pkg/api"
)

// APIClient операции сервера, которые нужны сервису авторизации.
// Реализуется *api.Client.
type APIClient interface {
	BaseURL() string

	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.OTPResponse, error)
	Verify(ctx context.Context, otp, encryptedOTP string) (*pkgapi.UserResponse, api.Tokens, error)

	Login(ctx context.Context, kind string, req pkgapi.LoginRequest) (*pkgapi.SessionInfo, api.Tokens, error)
	Logout(ctx context.Context, kind string, tokens api.Tokens) error
	Refresh(ctx context.Context, kind string, tokens api.Tokens) (api.Tokens, bool, error)

	Me(ctx context.Context, tokens api.Tokens) (*pkgapi.UserResponse, error)
}

var _ APIClient = (*api.Client)(nil)
