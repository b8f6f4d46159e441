package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/rentspace/internal/client/api"
	"github.com/iudanet/rentspace/internal/client/storage"
	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/validation"
	pkgapi "github.com/iudanet/rentspace/pkg/api"
)

var (
	// ErrNotLoggedIn локальной сессии нет
	ErrNotLoggedIn = errors.New("not logged in, run login first")

	// ErrNoPendingRegistration нет регистрации, ожидающей кода
	ErrNoPendingRegistration = errors.New("no pending registration, run register first")

	// ErrUserSessionRequired команда доступна только пользователю
	ErrUserSessionRequired = errors.New("command requires a user session")
)

// Service управляет сессией клиента: вход, выход, обновление токенов
type Service struct {
	apiClient APIClient
	store     storage.AuthStorage
	now       func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(apiClient APIClient, store storage.AuthStorage) *Service {
	return &Service{
		apiClient: apiClient,
		store:     store,
		now:       time.Now,
	}
}

// Status состояние клиента
type Status struct {
	Session *storage.Session             // nil если вход не выполнен
	Pending *storage.PendingVerification // nil если нет незавершенной регистрации
}

// LoggedIn есть ли сохраненная сессия
func (s Status) LoggedIn() bool {
	return s.Session != nil
}

// Register регистрирует пользователя и запоминает шифрованный OTP до ввода кода
func (s *Service) Register(ctx context.Context, name, email, password, phone string) (*storage.PendingVerification, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("invalid name: name cannot be empty")
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Register(ctx, pkgapi.RegisterRequest{
		Name:        strings.TrimSpace(name),
		Email:       email,
		Password:    password,
		PhoneNumber: phone,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	pending := &storage.PendingVerification{
		CreatedAt:    s.now().UTC(),
		Server:       s.apiClient.BaseURL(),
		Email:        email,
		EncryptedOTP: resp.EncryptedOTP,
	}
	if err := s.store.SavePending(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to save pending registration: %w", err)
	}

	return pending, nil
}

// Verify завершает регистрацию кодом из письма. Сервер сразу открывает сессию.
func (s *Service) Verify(ctx context.Context, otp string) (*storage.Session, error) {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return nil, fmt.Errorf("otp cannot be empty")
	}

	pending, err := s.store.GetPending(ctx)
	if errors.Is(err, storage.ErrPendingNotFound) {
		return nil, ErrNoPendingRegistration
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending registration: %w", err)
	}

	user, tokens, err := s.apiClient.Verify(ctx, otp, pending.EncryptedOTP)
	if err != nil {
		return nil, fmt.Errorf("verification failed: %w", err)
	}

	sess := &storage.Session{
		SavedAt:      s.now().UTC(),
		Server:       s.apiClient.BaseURL(),
		Kind:         models.KindUser.String(),
		PrincipalID:  user.ID,
		Email:        user.Email,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if err := s.store.DeletePending(ctx); err != nil {
		slog.Warn("failed to delete pending registration", "error", err)
	}

	return sess, nil
}

// Login выполняет вход и сохраняет cookie сессии
func (s *Service) Login(ctx context.Context, kind models.PrincipalKind, email, password string) (*storage.Session, error) {
	if _, err := models.ParsePrincipalKind(kind.String()); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("invalid password: password cannot be empty")
	}

	info, tokens, err := s.apiClient.Login(ctx, kind.String(), pkgapi.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	sess := &storage.Session{
		SavedAt:      s.now().UTC(),
		Server:       s.apiClient.BaseURL(),
		Kind:         kind.String(),
		PrincipalID:  info.ID,
		Email:        email,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return sess, nil
}

// Logout выполняет выход из системы
// Удаляет локальную сессию, даже если сервер недоступен
func (s *Service) Logout(ctx context.Context) error {
	sess, err := s.session(ctx)
	if err != nil {
		return err
	}

	// best effort: сервер мог уже отозвать токен
	if logoutErr := s.apiClient.Logout(ctx, sess.Kind, tokensOf(sess)); logoutErr != nil {
		slog.Warn("failed to logout on server", "error", logoutErr)
	}

	if err := s.store.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete local session: %w", err)
	}

	return nil
}

// Refresh обменивает refresh токен на новую пару.
// rotated=true если сервер заменил и refresh токен.
func (s *Service) Refresh(ctx context.Context) (bool, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return false, err
	}
	return s.refresh(ctx, sess)
}

// Status возвращает текущую сессию и незавершенную регистрацию
func (s *Service) Status(ctx context.Context) (Status, error) {
	var st Status

	sess, err := s.store.GetSession(ctx)
	switch {
	case err == nil:
		st.Session = sess
	case !errors.Is(err, storage.ErrAuthNotFound):
		return Status{}, fmt.Errorf("failed to load session: %w", err)
	}

	pending, err := s.store.GetPending(ctx)
	switch {
	case err == nil:
		st.Pending = pending
	case !errors.Is(err, storage.ErrPendingNotFound):
		return Status{}, fmt.Errorf("failed to load pending registration: %w", err)
	}

	return st, nil
}

// WhoAmI запрашивает у сервера учетную запись текущего пользователя.
// Просроченный access токен обновляется один раз.
func (s *Service) WhoAmI(ctx context.Context) (*pkgapi.UserResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	if sess.Kind != models.KindUser.String() {
		return nil, ErrUserSessionRequired
	}

	user, err := s.apiClient.Me(ctx, tokensOf(sess))
	if api.StatusCode(err) != http.StatusUnauthorized {
		return user, err
	}

	slog.Debug("access token rejected, refreshing session")
	if _, err := s.refresh(ctx, sess); err != nil {
		return nil, err
	}
	return s.apiClient.Me(ctx, tokensOf(sess))
}

// refresh обновляет токены sess и сохраняет их
func (s *Service) refresh(ctx context.Context, sess *storage.Session) (bool, error) {
	tokens, rotated, err := s.apiClient.Refresh(ctx, sess.Kind, tokensOf(sess))
	if err != nil {
		return false, fmt.Errorf("refresh failed: %w", err)
	}

	sess.AccessToken = tokens.AccessToken
	sess.RefreshToken = tokens.RefreshToken
	sess.SavedAt = s.now().UTC()
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return false, fmt.Errorf("failed to save session: %w", err)
	}

	return rotated, nil
}

func (s *Service) session(ctx context.Context) (*storage.Session, error) {
	sess, err := s.store.GetSession(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

func tokensOf(sess *storage.Session) api.Tokens {
	return api.Tokens{AccessToken: sess.AccessToken, RefreshToken: sess.RefreshToken}
}

func validateEmail(email string) error {
	if err := validation.ValidateVar(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email: %q", email)
	}
	return nil
}
