package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/rentspace/internal/crypto"
	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/otpguard"
	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/internal/server/storage"
	"github.com/iudanet/rentspace/internal/server/storage/sqlite"
	"github.com/iudanet/rentspace/pkg/api"
)

var (
	testPasswordKey = bytes.Repeat([]byte{1}, crypto.KeySize)
	testOTPKey      = bytes.Repeat([]byte{2}, crypto.KeySize)
	testNow         = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockCredentialStore is a map-based CredentialStore for testing
type mockCredentialStore struct {
	principals map[string]*models.Principal // id -> principal
	getErr     error
	updateErr  error
	mu         sync.Mutex
}

func newMockCredentialStore(principals ...*models.Principal) *mockCredentialStore {
	m := &mockCredentialStore{principals: make(map[string]*models.Principal)}
	for _, p := range principals {
		m.principals[p.ID] = p
	}
	return m
}

func (m *mockCredentialStore) CreatePrincipal(_ context.Context, p *models.Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.principals {
		if strings.EqualFold(existing.Email, p.Email) {
			return storage.ErrAlreadyExists
		}
	}
	c := *p
	m.principals[p.ID] = &c
	return nil
}

func (m *mockCredentialStore) FindPrincipal(_ context.Context, id string) (*models.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.principals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *mockCredentialStore) GetPrincipalByEmail(_ context.Context, email string) (*models.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, p := range m.principals {
		if strings.EqualFold(p.Email, email) {
			c := *p
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *mockCredentialStore) FindPrincipalByRefreshToken(_ context.Context, token string) (*models.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.principals {
		if p.HasRefreshToken(token) {
			c := *p
			return &c, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *mockCredentialStore) UpdatePrincipal(_ context.Context, p *models.Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	existing, ok := m.principals[p.ID]
	if !ok {
		return storage.ErrNotFound
	}
	c := *p
	c.RefreshTokens = existing.RefreshTokens
	m.principals[p.ID] = &c
	return nil
}

func (m *mockCredentialStore) AddRefreshToken(_ context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.principals[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.RefreshTokens = append(p.RefreshTokens, token)
	return nil
}

func (m *mockCredentialStore) RemoveRefreshToken(_ context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.principals[id]
	if !ok {
		return storage.ErrTokenNotFound
	}
	for i, t := range p.RefreshTokens {
		if t == token {
			p.RefreshTokens = append(p.RefreshTokens[:i], p.RefreshTokens[i+1:]...)
			return nil
		}
	}
	return storage.ErrTokenNotFound
}

func (m *mockCredentialStore) CountRefreshTokens(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.principals {
		n += len(p.RefreshTokens)
	}
	return n, nil
}

func (m *mockCredentialStore) get(id string) *models.Principal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.principals[id]
}

// mockSessions records SessionManager calls
type mockSessions struct {
	issueErr  error
	rotateErr error
	revokeErr error
	issued    []string // principal ids
	revoked   []string // refresh tokens
	rotated   bool
}

func (m *mockSessions) Issue(_ context.Context, _ models.PrincipalKind, id string) (session.Pair, error) {
	if m.issueErr != nil {
		return session.Pair{}, m.issueErr
	}
	m.issued = append(m.issued, id)
	return session.Pair{AccessToken: "access-" + id, RefreshToken: "refresh-" + id}, nil
}

func (m *mockSessions) Rotate(_ context.Context, _ models.PrincipalKind, refresh string) (session.Pair, bool, error) {
	if refresh == "" {
		return session.Pair{}, false, session.ErrNotAuthenticated
	}
	if m.rotateErr != nil {
		return session.Pair{}, false, m.rotateErr
	}
	if m.rotated {
		return session.Pair{AccessToken: "access-new", RefreshToken: "refresh-new"}, true, nil
	}
	return session.Pair{AccessToken: "access-renewed", RefreshToken: refresh}, false, nil
}

func (m *mockSessions) Revoke(_ context.Context, _ models.PrincipalKind, _, refresh string) error {
	if refresh == "" {
		return session.ErrNotAuthenticated
	}
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.revoked = append(m.revoked, refresh)
	return nil
}

type sentMail struct {
	to, subject, body string
}

// recordingMailer keeps sent mails in memory
type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

var otpPattern = regexp.MustCompile(`code is (\d+)`)

// lastOTP extracts the code from the last sent mail
func (m *recordingMailer) lastOTP(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.sent)
	match := otpPattern.FindStringSubmatch(m.sent[len(m.sent)-1].body)
	require.Len(t, match, 2)
	return match[1]
}

type accountFixture struct {
	handler  *AccountHandler
	store    *mockCredentialStore
	sessions *mockSessions
	mailer   *recordingMailer
	guard    *otpguard.MemoryGuard
}

func newAccountFixture(t *testing.T, kind models.PrincipalKind, principals ...*models.Principal) *accountFixture {
	t.Helper()

	f := &accountFixture{
		store:    newMockCredentialStore(principals...),
		sessions: &mockSessions{},
		mailer:   &recordingMailer{},
		guard:    otpguard.NewMemoryGuard(3, time.Minute),
	}
	f.handler = NewAccountHandler(setupTestLogger(), kind, f.store, f.sessions, f.guard, f.mailer, AccountConfig{
		PasswordKey:   testPasswordKey,
		OTPKey:        testOTPKey,
		OTPTTL:        5 * time.Minute,
		OTPDigits:     4,
		SecureCookies: true,
	})
	f.handler.now = func() time.Time { return testNow }

	return f
}

func newTestPrincipal(t *testing.T, id, email, password string) *models.Principal {
	t.Helper()

	sealed, err := crypto.EncryptPassword(testPasswordKey, password)
	require.NoError(t, err)

	return &models.Principal{
		ID:        id,
		Name:      "Test User",
		Email:     email,
		Password:  sealed,
		Verified:  true,
		Active:    true,
		CreatedAt: testNow,
	}
}

func setupTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	s, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// testEnvelope mirrors api.Envelope with raw data for typed decoding
type testEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) testEnvelope {
	t.Helper()

	var env testEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil {
		require.NotEmpty(t, env.Data)
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()

	if s, ok := v.(string); ok {
		return strings.NewReader(s)
	}
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var r io.Reader
	if body != nil {
		r = jsonBody(t, body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withIdentity(req *http.Request, kind models.PrincipalKind, id string) *http.Request {
	return req.WithContext(WithIdentity(req.Context(), session.Identity{Kind: kind, ID: id}))
}

func withCookies(req *http.Request, access, refresh string) *http.Request {
	if access != "" {
		req.AddCookie(&http.Cookie{Name: api.AccessTokenCookie, Value: access})
	}
	if refresh != "" {
		req.AddCookie(&http.Cookie{Name: api.RefreshTokenCookie, Value: refresh})
	}
	return req
}

func responseCookies(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range w.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}
