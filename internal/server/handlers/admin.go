package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iudanet/rentspace/internal/crypto"
	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/storage"
	"github.com/iudanet/rentspace/pkg/api"
)

// AdminHandler управление пользователями администратором.
// Вход, выход и сброс пароля наследуются от AccountHandler.
type AdminHandler struct {
	*AccountHandler
	users storage.CredentialStore
}

// NewAdminHandler создает AdminHandler. account должен обслуживать учетные записи вида admin.
func NewAdminHandler(account *AccountHandler, users storage.CredentialStore) *AdminHandler {
	return &AdminHandler{
		AccountHandler: account,
		users:          users,
	}
}

// SetUserActive обрабатывает PUT /admin/users/{id}/active
// Блокирует или разблокирует пользователя
func (h *AdminHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := chi.URLParam(r, "id")
	if userID == "" {
		sendError(w, r, h.logger, badRequest("user id is required"))
		return
	}

	var req api.SetActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	p, err := h.users.FindPrincipal(ctx, userID)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	p.Active = req.Active
	if err := h.users.UpdatePrincipal(ctx, p); err != nil {
		sendError(w, r, h.logger, fmt.Errorf("failed to update user: %w", err))
		return
	}

	message := "user unblocked successfully"
	if !req.Active {
		message = "user blocked successfully"
	}
	h.logger.InfoContext(ctx, message, slog.String("user_id", p.ID))

	sendJSON(w, h.logger, http.StatusOK, message, api.Identity{ID: p.ID, Kind: models.KindUser.String()})
}

// BootstrapAdmin создает администратора при первом запуске, если его еще нет.
// Пустой email отключает создание.
func BootstrapAdmin(ctx context.Context, logger *slog.Logger, admins storage.CredentialStore, passwordKey []byte, name, email, password string) error {
	if email == "" {
		return nil
	}

	_, err := admins.GetPrincipalByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	sealed, err := crypto.EncryptPassword(passwordKey, password)
	if err != nil {
		return err
	}

	admin := &models.Principal{
		ID:        uuid.New().String(),
		Kind:      models.KindAdmin,
		Name:      name,
		Email:     strings.ToLower(email),
		Password:  sealed,
		Verified:  true,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := admins.CreatePrincipal(ctx, admin); err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	logger.InfoContext(ctx, "bootstrap admin created", slog.String("email", admin.Email))
	return nil
}
