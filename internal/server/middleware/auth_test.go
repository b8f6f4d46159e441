package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/handlers"
	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// fakeVerifier accepts exactly one token pair
type fakeVerifier struct {
	access    string
	refresh   string
	identity  session.Identity
	err       error
	gotKinds  []models.PrincipalKind
	callCount int
}

func (v *fakeVerifier) Verify(_ context.Context, access, refresh string, kinds ...models.PrincipalKind) (session.Identity, error) {
	v.callCount++
	v.gotKinds = kinds
	if v.err != nil {
		return session.Identity{}, v.err
	}
	if access == "" {
		return session.Identity{}, session.ErrNotAuthenticated
	}
	if access != v.access {
		return session.Identity{}, session.ErrNotAuthenticated
	}
	if refresh != v.refresh {
		return session.Identity{}, session.ErrInvalidToken
	}
	return v.identity, nil
}

func identityHandler(t *testing.T, want session.Identity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got, ok := handlers.IdentityFrom(r.Context())
		require.True(t, ok, "identity should be in context")
		assert.Equal(t, want, got)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func withSessionCookies(req *http.Request, access, refresh string) *http.Request {
	if access != "" {
		req.AddCookie(&http.Cookie{Name: api.AccessTokenCookie, Value: access})
	}
	if refresh != "" {
		req.AddCookie(&http.Cookie{Name: api.RefreshTokenCookie, Value: refresh})
	}
	return req
}

func TestAuthMiddleware(t *testing.T) {
	admin := session.Identity{Kind: models.KindAdmin, ID: "admin-1"}

	tests := []struct {
		name          string
		access        string
		refresh       string
		verifierErr   error
		wantStatus    int
		wantMessage   string
		wantNextCalls bool
	}{
		{
			name:          "valid session",
			access:        "access-ok",
			refresh:       "refresh-ok",
			wantStatus:    http.StatusOK,
			wantNextCalls: true,
		},
		{
			name:        "no cookies",
			wantStatus:  http.StatusBadRequest,
			wantMessage: session.ErrNotAuthenticated.Error(),
		},
		{
			name:        "foreign access token",
			access:      "access-forged",
			refresh:     "refresh-ok",
			wantStatus:  http.StatusBadRequest,
			wantMessage: session.ErrNotAuthenticated.Error(),
		},
		{
			name:        "revoked refresh token",
			access:      "access-ok",
			refresh:     "refresh-revoked",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: session.ErrInvalidToken.Error(),
		},
		{
			name:        "principal of another kind",
			access:      "access-ok",
			refresh:     "refresh-ok",
			verifierErr: session.ErrAccessDenied,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: session.ErrAccessDenied.Error(),
		},
		{
			name:        "storage failure",
			access:      "access-ok",
			refresh:     "refresh-ok",
			verifierErr: assert.AnError,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{
				access:   "access-ok",
				refresh:  "refresh-ok",
				identity: admin,
				err:      tt.verifierErr,
			}

			called := false
			next := identityHandler(t, admin)
			handler := AuthMiddleware(setupTestLogger(), verifier, models.KindAdmin)(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					called = true
					next(w, r)
				}))

			req := withSessionCookies(httptest.NewRequest(http.MethodGet, "/support", nil), tt.access, tt.refresh)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantNextCalls, called)
			assert.Equal(t, []models.PrincipalKind{models.KindAdmin}, verifier.gotKinds)

			if tt.wantMessage != "" {
				var env api.Envelope
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
				assert.Equal(t, tt.wantMessage, env.Message)
				assert.NotEqual(t, api.StatusSuccess, env.Status)
			}
		})
	}
}

func TestAuthMiddleware_AnyKind(t *testing.T) {
	user := session.Identity{Kind: models.KindUser, ID: "user-1"}
	verifier := &fakeVerifier{access: "a", refresh: "r", identity: user}

	handler := AuthMiddleware(setupTestLogger(), verifier)(identityHandler(t, user))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withSessionCookies(httptest.NewRequest(http.MethodGet, "/property", nil), "a", "r"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, verifier.gotKinds, "no kinds lets the verifier try every kind")
	assert.Equal(t, 1, verifier.callCount)
}
