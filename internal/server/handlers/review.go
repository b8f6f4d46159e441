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

// ReviewHandler отзывы на объявления
type ReviewHandler struct {
	logger     *slog.Logger
	reviews    storage.ReviewStorage
	properties storage.PropertyStorage
	now        func() time.Time
}

// NewReviewHandler создает ReviewHandler
func NewReviewHandler(logger *slog.Logger, reviews storage.ReviewStorage, properties storage.PropertyStorage) *ReviewHandler {
	return &ReviewHandler{
		logger:     logger,
		reviews:    reviews,
		properties: properties,
		now:        time.Now,
	}
}

// Create обрабатывает POST /review
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	var req api.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		sendError(w, r, h.logger, badRequest("%s", err.Error()))
		return
	}

	if _, err := h.properties.GetProperty(ctx, req.PropertyID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sendError(w, r, h.logger, badRequest("property does not exist"))
			return
		}
		sendError(w, r, h.logger, err)
		return
	}

	review := &models.Review{
		ID:         uuid.New().String(),
		UserID:     id.ID,
		PropertyID: req.PropertyID,
		Comment:    req.Comment,
		Rating:     req.Rating,
		CreatedAt:  h.now(),
	}
	if err := h.reviews.CreateReview(ctx, review); err != nil {
		sendError(w, r, h.logger, fmt.Errorf("failed to create review: %w", err))
		return
	}

	sendJSON(w, h.logger, http.StatusCreated, "review created successfully", review)
}

// List обрабатывает GET /review?propertyId=
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuidQuery(r, "propertyId")
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	reviews, err := h.reviews.ListReviews(r.Context(), propertyID)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "reviews retrieved successfully", reviews)
}
