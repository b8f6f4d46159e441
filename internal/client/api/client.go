package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/iudanet/rentspace/pkg/api"
)

// ErrNoSessionCookies сервер ответил успехом, но не прислал cookie сессии
var ErrNoSessionCookies = errors.New("server did not set session cookies")

// Error ответ сервера с кодом вне 2xx
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// StatusCode возвращает HTTP код ошибки сервера или 0, если err пришла не от сервера
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Tokens значения cookie сессии
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
}

// BaseURL адрес сервера
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register регистрирует пользователя и возвращает шифрованный OTP
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.OTPResponse, error) {
	var resp api.OTPResponse
	if _, err := c.doRequest(ctx, http.MethodPost, "/user/register", nil, req, nil, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Verify подтверждает регистрацию кодом из письма и открывает сессию
func (c *Client) Verify(ctx context.Context, otp, encryptedOTP string) (*api.UserResponse, Tokens, error) {
	query := url.Values{"otp": {otp}, "encryptOtp": {encryptedOTP}}

	var resp api.UserResponse
	httpResp, err := c.doRequest(ctx, http.MethodPost, "/user/verify", query, nil, nil, &resp)
	if err != nil {
		return nil, Tokens{}, fmt.Errorf("verify request failed: %w", err)
	}

	tokens, err := sessionTokens(httpResp)
	if err != nil {
		return nil, Tokens{}, err
	}
	return &resp, tokens, nil
}

// Login выполняет вход для учетной записи вида kind (user или admin)
func (c *Client) Login(ctx context.Context, kind string, req api.LoginRequest) (*api.SessionInfo, Tokens, error) {
	var resp api.SessionInfo
	httpResp, err := c.doRequest(ctx, http.MethodPost, "/"+kind+"/login", nil, req, nil, &resp)
	if err != nil {
		return nil, Tokens{}, fmt.Errorf("login request failed: %w", err)
	}

	tokens, err := sessionTokens(httpResp)
	if err != nil {
		return nil, Tokens{}, err
	}
	return &resp, tokens, nil
}

// Logout отзывает refresh токен на сервере
func (c *Client) Logout(ctx context.Context, kind string, tokens Tokens) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/"+kind+"/logout", nil, nil, &tokens, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Refresh обновляет сессию. rotated=true если сервер выдал новый refresh токен.
func (c *Client) Refresh(ctx context.Context, kind string, tokens Tokens) (Tokens, bool, error) {
	var resp api.SessionInfo
	httpResp, err := c.doRequest(ctx, http.MethodPost, "/"+kind+"/refreshToken", nil, nil, &tokens, &resp)
	if err != nil {
		return Tokens{}, false, fmt.Errorf("refresh request failed: %w", err)
	}

	next, err := sessionTokens(httpResp)
	if err != nil {
		return Tokens{}, false, err
	}
	return next, resp.Rotated, nil
}

// Me возвращает учетную запись пользователя с анкетой
func (c *Client) Me(ctx context.Context, tokens Tokens) (*api.UserResponse, error) {
	var resp api.UserResponse
	if _, err := c.doRequest(ctx, http.MethodGet, "/user/me", nil, nil, &tokens, &resp); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &resp, nil
}

// Health проверяет доступность сервера и возвращает его версию
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if _, err := c.doRequest(ctx, http.MethodGet, "/health", nil, nil, nil, &resp); err != nil {
		return "", fmt.Errorf("health request failed: %w", err)
	}
	return resp.Version, nil
}

// doRequest выполняет HTTP запрос и разбирает общий конверт ответа.
// tokens, если заданы, отправляются как cookie сессии.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any, tokens *Tokens, result any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tokens != nil {
		req.AddCookie(&http.Cookie{Name: api.AccessTokenCookie, Value: tokens.AccessToken})
		req.AddCookie(&http.Cookie{Name: api.RefreshTokenCookie, Value: tokens.RefreshToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env struct {
		Data    json.RawMessage `json:"data"`
		Status  string          `json:"status"`
		Message string          `json:"message"`
	}
	envErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := env.Message
		if envErr != nil || message == "" {
			message = string(bytes.TrimSpace(respBody))
		}
		return nil, &Error{StatusCode: resp.StatusCode, Message: message}
	}

	if result != nil {
		if envErr != nil {
			return nil, fmt.Errorf("failed to decode response: %w", envErr)
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, result); err != nil {
				return nil, fmt.Errorf("failed to decode response data: %w", err)
			}
		}
	}

	return resp, nil
}

// sessionTokens достает токены из Set-Cookie ответа
func sessionTokens(resp *http.Response) (Tokens, error) {
	var t Tokens
	for _, c := range resp.Cookies() {
		switch c.Name {
		case api.AccessTokenCookie:
			t.AccessToken = c.Value
		case api.RefreshTokenCookie:
			t.RefreshToken = c.Value
		}
	}
	if t.AccessToken == "" || t.RefreshToken == "" {
		return Tokens{}, ErrNoSessionCookies
	}
	return t, nil
}
