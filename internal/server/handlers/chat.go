package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/internal/server/storage"
	"github.com/iudanet/rentspace/internal/validation"
	"github.com/iudanet/rentspace/pkg/api"
)

// ChatHandler переписка между пользователями.
// Сообщения только сохраняются, доставка в реальном времени не выполняется.
type ChatHandler struct {
	logger *slog.Logger
	chats  storage.ChatStorage
	users  storage.PrincipalStore
	now    func() time.Time
}

// NewChatHandler создает ChatHandler. users используется для проверки получателя.
func NewChatHandler(logger *slog.Logger, chats storage.ChatStorage, users storage.PrincipalStore) *ChatHandler {
	return &ChatHandler{
		logger: logger,
		chats:  chats,
		users:  users,
		now:    time.Now,
	}
}

// Send обрабатывает POST /chat
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	var req api.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		sendError(w, r, h.logger, badRequest("%s", err.Error()))
		return
	}

	if _, err := h.users.FindPrincipal(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sendError(w, r, h.logger, badRequest("no receiver with this id"))
			return
		}
		sendError(w, r, h.logger, err)
		return
	}
	if req.ReceiverID == id.ID {
		sendError(w, r, h.logger, badRequest("sender and receiver must be different"))
		return
	}

	msg := &models.ChatMessage{
		ID:             uuid.New().String(),
		SenderID:       id.ID,
		ReceiverID:     req.ReceiverID,
		MessageType:    req.MessageType,
		MessageContent: req.MessageContent,
		CreatedAt:      h.now(),
	}
	if err := h.chats.AddChatMessage(ctx, msg); err != nil {
		sendError(w, r, h.logger, fmt.Errorf("failed to add chat message: %w", err))
		return
	}

	sendJSON(w, h.logger, http.StatusAccepted, "the chat was sent", msg)
}

// Room обрабатывает GET /chat?receiverId=
// Возвращает сообщения в обе стороны, от старых к новым
func (h *ChatHandler) Room(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	peerID, err := uuidQuery(r, "receiverId")
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	messages, err := h.chats.ListChatRoom(ctx, id.ID, peerID)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "chat room fetched", messages)
}
