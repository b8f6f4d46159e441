package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/rentspace/pkg/api"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, message string, data any) {
	t.Helper()
	env := api.Envelope{Status: api.StatusSuccess, Message: message, Data: data}
	if status >= 500 {
		env.Status = api.StatusError
	} else if status >= 400 {
		env.Status = api.StatusFail
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(env))
}

func setTokens(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, &http.Cookie{Name: api.AccessTokenCookie, Value: access, Path: "/"})
	http.SetCookie(w, &http.Cookie{Name: api.RefreshTokenCookie, Value: refresh, Path: "/"})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	assert.NotNil(t, client)
	assert.Equal(t, baseURL, client.BaseURL())
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ada", req.Name)
		assert.Equal(t, "ada@example.com", req.Email)

		writeEnvelope(t, w, http.StatusAccepted, "otp sent to your email", api.OTPResponse{EncryptedOTP: "sealed"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.Register(context.Background(), api.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "Secret#123",
	})
	require.NoError(t, err)
	assert.Equal(t, "sealed", resp.EncryptedOTP)
}

func TestClient_Register_Conflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusConflict, "user already exists", nil)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Register(context.Background(), api.RegisterRequest{Email: "ada@example.com"})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "user already exists", apiErr.Message)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
}

func TestClient_Verify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/verify", r.URL.Path)
		assert.Equal(t, "482913", r.URL.Query().Get("otp"))
		assert.Equal(t, "sealed+value", r.URL.Query().Get("encryptOtp"))

		setTokens(w, "access-1", "refresh-1")
		writeEnvelope(t, w, http.StatusAccepted, "user verified successfully", api.UserResponse{
			ID:       "u-1",
			Email:    "ada@example.com",
			Verified: true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	user, tokens, err := client.Verify(context.Background(), "482913", "sealed+value")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.True(t, user.Verified)
	assert.Equal(t, Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}, tokens)
}

func TestClient_Login(t *testing.T) {
	tests := []struct {
		name       string
		kind       string
		wantPath   string
		setCookies bool
		wantErr    error
	}{
		{name: "user", kind: "user", wantPath: "/user/login", setCookies: true},
		{name: "admin", kind: "admin", wantPath: "/admin/login", setCookies: true},
		{name: "no cookies", kind: "user", wantPath: "/user/login", wantErr: ErrNoSessionCookies},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantPath, r.URL.Path)

				var req api.LoginRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "ada@example.com", req.Email)
				assert.Equal(t, "Secret#123", req.Password)

				if tt.setCookies {
					setTokens(w, "access", "refresh")
				}
				writeEnvelope(t, w, http.StatusOK, "login successfully", api.SessionInfo{ID: "p-1", Kind: tt.kind})
			}))
			defer server.Close()

			client := NewClient(server.URL)
			info, tokens, err := client.Login(context.Background(), tt.kind, api.LoginRequest{
				Email:    "ada@example.com",
				Password: "Secret#123",
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "p-1", info.ID)
			assert.Equal(t, tt.kind, info.Kind)
			assert.Equal(t, "access", tokens.AccessToken)
			assert.Equal(t, "refresh", tokens.RefreshToken)
		})
	}
}

func TestClient_Login_WrongPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusUnauthorized, "invalid credentials", nil)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, _, err := client.Login(context.Background(), "user", api.LoginRequest{Email: "ada@example.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestClient_Logout_ReplaysCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/logout", r.URL.Path)
		assert.Equal(t, "access", cookieValue(r, api.AccessTokenCookie))
		assert.Equal(t, "refresh", cookieValue(r, api.RefreshTokenCookie))
		writeEnvelope(t, w, http.StatusAccepted, "logout successfully", nil)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Logout(context.Background(), "admin", Tokens{AccessToken: "access", RefreshToken: "refresh"})
	require.NoError(t, err)
}

func TestClient_Refresh(t *testing.T) {
	tests := []struct {
		name        string
		rotated     bool
		wantRefresh string
	}{
		{name: "access only", rotated: false, wantRefresh: "refresh-old"},
		{name: "rotated", rotated: true, wantRefresh: "refresh-new"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/user/refreshToken", r.URL.Path)
				assert.Equal(t, "refresh-old", cookieValue(r, api.RefreshTokenCookie))

				setTokens(w, "access-new", tt.wantRefresh)
				writeEnvelope(t, w, http.StatusAccepted, "refresh token run successfully", api.SessionInfo{
					Kind:    "user",
					Rotated: tt.rotated,
				})
			}))
			defer server.Close()

			client := NewClient(server.URL)
			tokens, rotated, err := client.Refresh(context.Background(), "user", Tokens{
				AccessToken:  "access-old",
				RefreshToken: "refresh-old",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.rotated, rotated)
			assert.Equal(t, "access-new", tokens.AccessToken)
			assert.Equal(t, tt.wantRefresh, tokens.RefreshToken)
		})
	}
}

func TestClient_Me(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/user/me", r.URL.Path)
		if cookieValue(r, api.AccessTokenCookie) != "access" {
			writeEnvelope(t, w, http.StatusUnauthorized, "invalid token", nil)
			return
		}
		writeEnvelope(t, w, http.StatusOK, "user retrieved successfully", api.UserResponse{ID: "u-1", Name: "Ada"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	user, err := client.Me(context.Background(), Tokens{AccessToken: "access", RefreshToken: "refresh"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)

	_, err = client.Me(context.Background(), Tokens{AccessToken: "stale"})
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		writeEnvelope(t, w, http.StatusOK, "ok", map[string]string{"status": "ok", "version": "1.2.3"})
	}))
	defer server.Close()

	version, err := NewClient(server.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", version)
}

func TestClient_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Health(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, "ok", nil)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL).Health(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, StatusCode(err))
}
