package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/internal/server/storage"
	"github.com/iudanet/rentspace/internal/validation"
	"github.com/iudanet/rentspace/pkg/api"
)

// PropertyHandler объявления о сдаче жилья
type PropertyHandler struct {
	logger     *slog.Logger
	properties storage.PropertyStorage
	profiles   storage.ProfileStorage
	now        func() time.Time
}

// NewPropertyHandler создает PropertyHandler
func NewPropertyHandler(logger *slog.Logger, properties storage.PropertyStorage, profiles storage.ProfileStorage) *PropertyHandler {
	return &PropertyHandler{
		logger:     logger,
		properties: properties,
		profiles:   profiles,
		now:        time.Now,
	}
}

// Create обрабатывает POST /property
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	req, err := decodeProperty(r)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	now := h.now()
	p := propertyFromRequest(req, uuid.New().String(), id.ID)
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := h.properties.CreateProperty(ctx, p); err != nil {
		sendError(w, r, h.logger, fmt.Errorf("failed to create property: %w", err))
		return
	}

	h.logger.InfoContext(ctx, "property created",
		slog.String("property_id", p.ID),
		slog.String("user_id", id.ID))

	sendJSON(w, h.logger, http.StatusCreated, "property created successfully", p)
}

// Update обрабатывает PUT /property?id=
// Изменять объявление может только владелец
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	propertyID, err := uuidQuery(r, "id")
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	req, err := decodeProperty(r)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	p := propertyFromRequest(req, propertyID, id.ID)
	p.UpdatedAt = h.now()
	if err := h.properties.UpdateProperty(ctx, p); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	updated, err := h.properties.GetProperty(ctx, propertyID)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "property updated successfully", updated)
}

// Delete обрабатывает DELETE /property?id=
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	propertyID, err := uuidQuery(r, "id")
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	if err := h.properties.DeleteProperty(ctx, id.ID, propertyID); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(ctx, "property deleted", slog.String("property_id", propertyID))

	sendJSON(w, h.logger, http.StatusOK, "property deleted successfully", nil)
}

// Get обрабатывает GET /property?id=
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uuidQuery(r, "id")
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	p, err := h.properties.GetProperty(r.Context(), propertyID)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "property retrieved successfully", p)
}

// Mine обрабатывает GET /property/mine
func (h *PropertyHandler) Mine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	props, err := h.properties.ListPropertiesByOwner(ctx, id.ID)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "properties retrieved successfully", props)
}

// Nearest обрабатывает GET /property/nearest?maxDistance=&page=&limit=
// Чужие объявления по удалению от местоположения из анкеты; maxDistance в километрах
func (h *PropertyHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	page, limit, err := pagination(r)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	var maxKM float64
	if v := r.URL.Query().Get("maxDistance"); v != "" {
		maxKM, err = strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(maxKM) || math.IsInf(maxKM, 0) || maxKM < 0 {
			sendError(w, r, h.logger, badRequest("maxDistance must be a non-negative number"))
			return
		}
	}

	profile, err := h.profiles.GetProfile(ctx, id.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		sendError(w, r, h.logger, err)
		return
	}
	if profile == nil || profile.Location == nil {
		sendError(w, r, h.logger, badRequest("set your location in profile first"))
		return
	}

	props, err := h.properties.ListPropertiesExcludingOwner(ctx, id.ID)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sorted := nearest(props, *profile.Location, maxKM)
	sendJSON(w, h.logger, http.StatusOK, "nearest properties retrieved successfully", api.Page[models.NearbyProperty]{
		Items: paginate(sorted, page, limit),
		Page:  page,
		Limit: limit,
		Total: len(sorted),
	})
}

func decodeProperty(r *http.Request) (*api.PropertyRequest, error) {
	var req api.PropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(req); err != nil {
		return nil, badRequest("%s", err.Error())
	}
	return &req, nil
}

func propertyFromRequest(req *api.PropertyRequest, id, ownerID string) *models.Property {
	return &models.Property{
		ID:                    id,
		UserID:                ownerID,
		PropertyTitle:         req.PropertyTitle,
		ListingType:           models.ListingRent,
		PropertyCategory:      req.PropertyCategory,
		Location:              req.Location,
		RentPrice:             req.RentPrice,
		PhotosVideos:          req.PhotosVideos,
		PropertyFeatures:      req.PropertyFeatures,
		EnvironmentFacilities: req.EnvironmentFacilities,
	}
}

// uuidQuery читает обязательный UUID из query
func uuidQuery(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", badRequest("%s is required", name)
	}
	if _, err := uuid.Parse(v); err != nil {
		return "", badRequest("%s must be a valid uuid", name)
	}
	return v, nil
}
