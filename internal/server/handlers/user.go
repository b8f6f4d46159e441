package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/iudanet/rentspace/internal/crypto"
	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/internal/server/storage"
	"github.com/iudanet/rentspace/internal/validation"
	"github.com/iudanet/rentspace/pkg/api"
)

// UserHandler регистрация и личный кабинет пользователя.
// Вход, выход и сброс пароля наследуются от AccountHandler.
type UserHandler struct {
	*AccountHandler
	profiles storage.ProfileStorage
	settings storage.SettingsStorage
}

// NewUserHandler создает UserHandler. account должен обслуживать учетные записи вида user.
func NewUserHandler(account *AccountHandler, profiles storage.ProfileStorage, settings storage.SettingsStorage) *UserHandler {
	return &UserHandler{
		AccountHandler: account,
		profiles:       profiles,
		settings:       settings,
	}
}

// Register обрабатывает POST /user/register
// Создает неподтвержденного пользователя и отправляет OTP на email
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		sendError(w, r, h.logger, badRequest("%s", err.Error()))
		return
	}

	password, err := crypto.EncryptPassword(h.cfg.PasswordKey, req.Password)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	p, err := h.store.GetPrincipalByEmail(ctx, req.Email)
	switch {
	case err == nil && p.Verified:
		sendError(w, r, h.logger, &requestError{message: "email already registered", status: http.StatusConflict})
		return
	case err == nil:
		// повторная регистрация до подтверждения заменяет имя и пароль
		p.Name = req.Name
		p.Password = password
		err = h.store.UpdatePrincipal(ctx, p)
	case errors.Is(err, storage.ErrNotFound):
		p = &models.Principal{
			ID:        uuid.New().String(),
			Kind:      models.KindUser,
			Name:      req.Name,
			Email:     strings.ToLower(req.Email),
			Password:  password,
			Active:    true,
			CreatedAt: h.now(),
		}
		err = h.store.CreatePrincipal(ctx, p)
		if errors.Is(err, storage.ErrAlreadyExists) {
			err = &requestError{message: "email already registered", status: http.StatusConflict}
		}
	}
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	if req.PhoneNumber != "" {
		if err := h.updateProfile(ctx, p.ID, func(pr *models.Profile) { pr.PhoneNumber = req.PhoneNumber }); err != nil {
			sendError(w, r, h.logger, err)
			return
		}
	}

	sealed, err := h.sendOTP(ctx, p)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "user registered", slog.String("principal_id", p.ID))

	sendJSON(w, h.logger, http.StatusAccepted, "otp sent to your email", api.OTPResponse{EncryptedOTP: sealed})
}

// Verify обрабатывает POST /user/verify?otp=&encryptOtp=
// Подтверждает email, создает настройки по умолчанию и выдает сессию
func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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

	if err := h.consumeOTP(ctx, sealed, payload); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	if !p.Verified {
		p.Verified = true
		if err := h.store.UpdatePrincipal(ctx, p); err != nil {
			sendError(w, r, h.logger, fmt.Errorf("failed to verify user: %w", err))
			return
		}
	}

	if _, err := h.settings.GetSettings(ctx, p.ID); errors.Is(err, storage.ErrNotFound) {
		if err := h.settings.SaveSettings(ctx, models.DefaultSettings(p.ID)); err != nil {
			sendError(w, r, h.logger, fmt.Errorf("failed to create default settings: %w", err))
			return
		}
	} else if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	pair, err := h.sessions.Issue(ctx, models.KindUser, p.ID)
	if err != nil {
		sendError(w, r, h.logger, fmt.Errorf("failed to issue session: %w", err))
		return
	}
	setSessionCookies(w, pair, h.cfg.SecureCookies, h.now())

	resp, err := h.userResponse(ctx, p)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "user verified", slog.String("principal_id", p.ID))

	sendJSON(w, h.logger, http.StatusAccepted, "user verified successfully", resp)
}

// Me обрабатывает GET /user/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.currentUser(ctx)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	resp, err := h.userResponse(ctx, p)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "user retrieved successfully", resp)
}

// UpdateProfile обрабатывает PUT /user/updateProfile
// Обновляет только переданные поля анкеты
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.currentUser(ctx)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	var req api.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		sendError(w, r, h.logger, badRequest("%s", err.Error()))
		return
	}

	if req.Name != nil && *req.Name != p.Name {
		p.Name = *req.Name
		if err := h.store.UpdatePrincipal(ctx, p); err != nil {
			sendError(w, r, h.logger, fmt.Errorf("failed to update name: %w", err))
			return
		}
	}

	if err := h.updateProfile(ctx, p.ID, func(pr *models.Profile) { applyProfileUpdate(pr, &req) }); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	resp, err := h.userResponse(ctx, p)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "profile updated successfully", resp)
}

// CurrentLevel обрабатывает GET /user/currentLevel
func (h *UserHandler) CurrentLevel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.currentUser(ctx)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	profile, err := h.loadProfile(ctx, p.ID)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "current level retrieved successfully", api.LevelResponse{Level: profile.Level()})
}

// GetSettings обрабатывает GET /user/settings
func (h *UserHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	s, err := h.settings.GetSettings(ctx, id.ID)
	if errors.Is(err, storage.ErrNotFound) {
		s, err = models.DefaultSettings(id.ID), nil
	}
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "settings retrieved successfully", s)
}

// UpdateSettings обрабатывает PUT /user/settings
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	var req api.SettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	s := &models.Settings{
		UserID:               id.ID,
		NotificationSettings: req.NotificationSettings,
		PrivacyAndSecurity:   req.PrivacyAndSecurity,
	}
	if err := h.settings.SaveSettings(ctx, s); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "settings updated successfully", s)
}

func (h *UserHandler) currentUser(ctx context.Context) (*models.Principal, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return nil, session.ErrNotAuthenticated
	}
	return h.store.FindPrincipal(ctx, id.ID)
}

// loadProfile возвращает анкету или пустую, если она еще не сохранялась
func (h *UserHandler) loadProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := h.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.Profile{UserID: userID}, nil
	}
	return profile, err
}

func (h *UserHandler) updateProfile(ctx context.Context, userID string, apply func(*models.Profile)) error {
	profile, err := h.loadProfile(ctx, userID)
	if err != nil {
		return err
	}
	apply(profile)
	profile.UpdatedAt = h.now()

	if err := h.profiles.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (h *UserHandler) userResponse(ctx context.Context, p *models.Principal) (*api.UserResponse, error) {
	profile, err := h.loadProfile(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return &api.UserResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Verified:  p.Verified,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		Profile:   profile,
	}, nil
}

func applyProfileUpdate(p *models.Profile, req *api.UpdateProfileRequest) {
	if req.Location != nil {
		loc := *req.Location
		p.Location = &loc
	}
	if req.DateOfBirth != nil {
		dob := *req.DateOfBirth
		p.DateOfBirth = &dob
	}
	if req.SocialMediaLinks != nil {
		p.SocialMediaLinks = *req.SocialMediaLinks
	}
	if req.ProofOfOwnershipDocs != nil {
		p.ProofOfOwnershipDocs = req.ProofOfOwnershipDocs
	}
	if req.PropertyPictures != nil {
		p.PropertyPictures = req.PropertyPictures
	}

	for _, f := range []struct {
		src *string
		dst *string
	}{
		{req.PhoneNumber, &p.PhoneNumber},
		{req.ProfileImage, &p.ProfileImage},
		{req.Address, &p.Address},
		{req.Gender, &p.Gender},
		{req.PreferableID, &p.PreferableID},
		{req.NextOfKinName, &p.NextOfKinName},
		{req.NextOfKinPhoneNumber, &p.NextOfKinPhoneNumber},
		{req.NextOfKinRelationship, &p.NextOfKinRelationship},
		{req.Occupation, &p.Occupation},
		{req.CompanyName, &p.CompanyName},
		{req.CompanyAddress, &p.CompanyAddress},
		{req.SupervisorOrManagerName, &p.SupervisorOrManagerName},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
}
