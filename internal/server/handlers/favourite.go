package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/internal/server/storage"
	"github.com/iudanet/rentspace/pkg/api"
)

// FavouriteHandler избранные объявления пользователя
type FavouriteHandler struct {
	logger     *slog.Logger
	favourites storage.FavouriteStorage
}

// NewFavouriteHandler создает FavouriteHandler
func NewFavouriteHandler(logger *slog.Logger, favourites storage.FavouriteStorage) *FavouriteHandler {
	return &FavouriteHandler{
		logger:     logger,
		favourites: favourites,
	}
}

// Toggle обрабатывает PUT /favourite/toggle?propertyId=
func (h *FavouriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	propertyID, err := uuidQuery(r, "propertyId")
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	fav, err := h.favourites.ToggleFavourite(ctx, id.ID, propertyID)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	message := "property removed from favourites"
	if fav {
		message = "property added to favourites"
	}

	sendJSON(w, h.logger, http.StatusOK, message, api.FavouriteResponse{PropertyID: propertyID, Favourite: fav})
}

// List обрабатывает GET /favourite
func (h *FavouriteHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	props, err := h.favourites.ListFavourites(ctx, id.ID)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "favourites retrieved successfully", props)
}
