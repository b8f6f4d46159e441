package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/rentspace/internal/mailer"
	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/internal/server/storage"
	"github.com/iudanet/rentspace/internal/validation"
	"github.com/iudanet/rentspace/pkg/api"
)

// SupportHandler обращения в поддержку
type SupportHandler struct {
	logger  *slog.Logger
	support storage.SupportStorage
	mailer  mailer.Mailer
	now     func() time.Time
}

// NewSupportHandler создает SupportHandler
func NewSupportHandler(logger *slog.Logger, support storage.SupportStorage, m mailer.Mailer) *SupportHandler {
	return &SupportHandler{
		logger:  logger,
		support: support,
		mailer:  m,
		now:     time.Now,
	}
}

// Create обрабатывает POST /support
func (h *SupportHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	var req api.SupportRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		sendError(w, r, h.logger, badRequest("%s", err.Error()))
		return
	}

	msg := &models.SupportMessage{
		ID:        uuid.New().String(),
		UserID:    id.ID,
		Email:     req.Email,
		Message:   req.Message,
		CreatedAt: h.now(),
	}
	if err := h.support.CreateSupportMessage(ctx, msg); err != nil {
		sendError(w, r, h.logger, fmt.Errorf("failed to create support message: %w", err))
		return
	}

	sendJSON(w, h.logger, http.StatusCreated, "support message sent successfully", msg)
}

// List обрабатывает GET /support?resolved=&page=&limit=
func (h *SupportHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pagination(r)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	var resolved bool
	if v := r.URL.Query().Get("resolved"); v != "" {
		resolved, err = strconv.ParseBool(v)
		if err != nil {
			sendError(w, r, h.logger, badRequest("resolved must be true or false"))
			return
		}
	}

	items, total, err := h.support.ListSupportMessages(r.Context(), resolved, (page-1)*limit, limit)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "support messages retrieved successfully", api.Page[*models.SupportMessage]{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// Resolve обрабатывает PUT /support/resolve?id=
func (h *SupportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuidQuery(r, "id")
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	if err := h.support.ResolveSupportMessage(r.Context(), id); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "support message resolved successfully", nil)
}

// Reply обрабатывает POST /support/reply
// Отправляет ответ администратора письмом
func (h *SupportHandler) Reply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SupportRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		sendError(w, r, h.logger, badRequest("%s", err.Error()))
		return
	}

	if err := mailer.SendSupportReply(ctx, h.mailer, req.Email, req.Message); err != nil {
		sendError(w, r, h.logger, fmt.Errorf("failed to send reply: %w", err))
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "reply sent successfully", nil)
}
