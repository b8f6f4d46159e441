package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/rentspace/internal/crypto"
	"github.com/iudanet/rentspace/internal/mailer"
	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/otpguard"
	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/internal/server/storage"
	"github.com/iudanet/rentspace/internal/validation"
	"github.com/iudanet/rentspace/pkg/api"
)

// SessionManager выдача, ротация и отзыв сессий
type SessionManager interface {
	Issue(ctx context.Context, kind models.PrincipalKind, principalID string) (session.Pair, error)
	Rotate(ctx context.Context, kind models.PrincipalKind, refresh string) (session.Pair, bool, error)
	Revoke(ctx context.Context, kind models.PrincipalKind, principalID, refresh string) error
}

// AccountConfig параметры AccountHandler
type AccountConfig struct {
	PasswordKey   []byte        // ключ шифрования паролей
	OTPKey        []byte        // ключ шифрования OTP
	OTPTTL        time.Duration // время жизни OTP
	OTPDigits     int           // длина OTP
	SecureCookies bool
}

// AccountHandler вход, выход, обновление сессии и сброс пароля.
// Один и тот же обработчик обслуживает /user и /admin, различаясь видом учетной записи.
type AccountHandler struct {
	logger   *slog.Logger
	store    storage.CredentialStore
	sessions SessionManager
	guard    otpguard.Guard
	mailer   mailer.Mailer
	now      func() time.Time
	cfg      AccountConfig
	kind     models.PrincipalKind
}

// NewAccountHandler создает AccountHandler для учетных записей вида kind
func NewAccountHandler(
	logger *slog.Logger,
	kind models.PrincipalKind,
	store storage.CredentialStore,
	sessions SessionManager,
	guard otpguard.Guard,
	m mailer.Mailer,
	cfg AccountConfig,
) *AccountHandler {
	return &AccountHandler{
		logger:   logger.With(slog.String("kind", kind.String())),
		kind:     kind,
		store:    store,
		sessions: sessions,
		guard:    guard,
		mailer:   m,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Login обрабатывает POST /<kind>/login
// Вход по email и паролю, выдает новую сессию
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		sendError(w, r, h.logger, badRequest("%s", err.Error()))
		return
	}

	p, err := h.store.GetPrincipalByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sendError(w, r, h.logger, badRequest("you are not signup"))
			return
		}
		sendError(w, r, h.logger, fmt.Errorf("failed to get %s: %w", h.kind, err))
		return
	}

	// администраторы создаются уже подтвержденными
	if h.kind == models.KindUser && !p.Verified {
		sendError(w, r, h.logger, badRequest("you are not signup"))
		return
	}
	if !p.Active {
		sendError(w, r, h.logger, badRequest("you are blocked by admin"))
		return
	}
	if !crypto.CheckPassword(h.cfg.PasswordKey, p.Password, req.Password) {
		h.logger.WarnContext(ctx, "login failed: wrong password", slog.String("principal_id", p.ID))
		sendError(w, r, h.logger, badRequest("incorrect password"))
		return
	}

	pair, err := h.sessions.Issue(ctx, h.kind, p.ID)
	if err != nil {
		sendError(w, r, h.logger, fmt.Errorf("failed to issue session: %w", err))
		return
	}
	setSessionCookies(w, pair, h.cfg.SecureCookies, h.now())

	h.logger.InfoContext(ctx, "logged in successfully", slog.String("principal_id", p.ID))

	sendJSON(w, h.logger, http.StatusOK, "login successfully", api.SessionInfo{
		ID:           p.ID,
		Kind:         h.kind.String(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout обрабатывает POST /<kind>/logout
// Отзывает только refresh токен текущей сессии, остальные устройства остаются в системе
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	_, refresh := SessionCookies(r)
	if err := h.sessions.Revoke(ctx, id.Kind, id.ID, refresh); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	clearSessionCookies(w, h.cfg.SecureCookies)

	h.logger.InfoContext(ctx, "logged out successfully", slog.String("principal_id", id.ID))

	sendJSON(w, h.logger, http.StatusAccepted, "logout successfully", nil)
}

// RefreshToken обрабатывает POST /<kind>/refreshToken
// Обменивает refresh токен из cookie на новый access токен
func (h *AccountHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, refresh := SessionCookies(r)
	pair, rotated, err := h.sessions.Rotate(ctx, h.kind, refresh)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	setSessionCookies(w, pair, h.cfg.SecureCookies, h.now())

	sendJSON(w, h.logger, http.StatusAccepted, "refresh token run successfully", api.SessionInfo{
		Kind:         h.kind.String(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Rotated:      rotated,
	})
}

// SendForgetOTP обрабатывает GET /<kind>/sendForgetOtp?email=
// Отправляет OTP для сброса пароля
func (h *AccountHandler) SendForgetOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if err := validation.ValidateVar(email, "required,email"); err != nil {
		sendError(w, r, h.logger, badRequest("valid email is required"))
		return
	}

	p, err := h.store.GetPrincipalByEmail(ctx, email)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	// флаг ставится только после отправки письма
	sealed, err := h.sendOTP(ctx, p)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	p.ForgetPassword = true
	if err := h.store.UpdatePrincipal(ctx, p); err != nil {
		sendError(w, r, h.logger, fmt.Errorf("failed to mark forget password: %w", err))
		return
	}

	sendJSON(w, h.logger, http.StatusAccepted, "otp sent to your email", api.OTPResponse{EncryptedOTP: sealed})
}

// ValidateOTP обрабатывает GET /<kind>/validate-otp?otp=&encryptOtp=
// Проверяет код, не помечая его использованным
func (h *AccountHandler) ValidateOTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if _, err := h.verifyOTP(r.Context(), q.Get("otp"), q.Get("encryptOtp")); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusAccepted, "otp is valid", nil)
}

// OTPChangePassword обрабатывает PUT /<kind>/otpChangePassword?otp=&encryptOtp=
// Меняет пароль после запроса сброса
func (h *AccountHandler) OTPChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		sendError(w, r, h.logger, badRequest("%s", err.Error()))
		return
	}

	q := r.URL.Query()
	sealed := q.Get("encryptOtp")
	payload, err := h.verifyOTP(ctx, q.Get("otp"), sealed)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	p, err := h.store.GetPrincipalByEmail(ctx, payload.Email)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	if !p.ForgetPassword {
		sendError(w, r, h.logger, badRequest("password reset was not requested"))
		return
	}

	if err := h.consumeOTP(ctx, sealed, payload); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	encrypted, err := crypto.EncryptPassword(h.cfg.PasswordKey, req.Password)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	p.Password = encrypted
	p.ForgetPassword = false
	if err := h.store.UpdatePrincipal(ctx, p); err != nil {
		sendError(w, r, h.logger, fmt.Errorf("failed to update password: %w", err))
		return
	}

	h.logger.InfoContext(ctx, "password changed", slog.String("principal_id", p.ID))

	sendJSON(w, h.logger, http.StatusAccepted, "password changed successfully", nil)
}

// sendOTP генерирует код, отправляет его письмом и возвращает шифрованный блоб для клиента
func (h *AccountHandler) sendOTP(ctx context.Context, p *models.Principal) (string, error) {
	code, err := crypto.GenerateOTP(h.cfg.OTPDigits)
	if err != nil {
		return "", err
	}

	sealed, err := crypto.SealOTP(h.cfg.OTPKey, code, p.Email, h.now().Add(h.cfg.OTPTTL))
	if err != nil {
		return "", fmt.Errorf("failed to seal otp: %w", err)
	}

	if err := mailer.SendVerificationCode(ctx, h.mailer, p.Email, p.Name, code); err != nil {
		return "", fmt.Errorf("failed to send otp: %w", err)
	}

	return sealed, nil
}

// verifyOTP расшифровывает блоб, учитывает попытку и сравнивает код
func (h *AccountHandler) verifyOTP(ctx context.Context, code, sealed string) (*crypto.OTPPayload, error) {
	if code == "" || sealed == "" {
		return nil, badRequest("otp and encryptOtp are required")
	}

	payload, err := crypto.OpenOTP(h.cfg.OTPKey, sealed, h.now())
	if err != nil {
		return nil, err
	}

	if err := h.guard.Allow(ctx, payload.Email); err != nil {
		return nil, err
	}
	if !crypto.CompareOTP(payload.OTP, code) {
		return nil, crypto.ErrOTPInvalid
	}

	return payload, nil
}

// consumeOTP помечает код использованным до конца срока его действия
func (h *AccountHandler) consumeOTP(ctx context.Context, sealed string, payload *crypto.OTPPayload) error {
	ttl := time.UnixMilli(payload.ExpiresAt).Sub(h.now())
	if err := h.guard.Consume(ctx, sealed, ttl); err != nil {
		return err
	}
	if err := h.guard.Reset(ctx, payload.Email); err != nil {
		h.logger.WarnContext(ctx, "failed to reset otp attempts", slog.Any("error", err))
	}
	return nil
}
