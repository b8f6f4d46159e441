package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/internal/server/storage"
	"github.com/iudanet/rentspace/internal/validation"
	"github.com/iudanet/rentspace/pkg/api"
)

// ContentHandler пользовательское соглашение и платежные реквизиты
type ContentHandler struct {
	logger   *slog.Logger
	terms    storage.TermsStorage
	payments storage.PaymentStorage
	now      func() time.Time
}

// NewContentHandler создает ContentHandler
func NewContentHandler(logger *slog.Logger, terms storage.TermsStorage, payments storage.PaymentStorage) *ContentHandler {
	return &ContentHandler{
		logger:   logger,
		terms:    terms,
		payments: payments,
		now:      time.Now,
	}
}

// GetTerms обрабатывает GET /terms
func (h *ContentHandler) GetTerms(w http.ResponseWriter, r *http.Request) {
	t, err := h.terms.GetTerms(r.Context())
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "terms retrieved successfully", t)
}

// SaveTerms обрабатывает PUT /terms
func (h *ContentHandler) SaveTerms(w http.ResponseWriter, r *http.Request) {
	var req api.TermsRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		sendError(w, r, h.logger, badRequest("%s", err.Error()))
		return
	}

	t := &models.TermConditions{
		Terms:         req.Terms,
		UseAndLicense: req.UseAndLicense,
		UpdatedAt:     h.now(),
	}
	if err := h.terms.SaveTerms(r.Context(), t); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "terms saved successfully", t)
}

// GetPaymentMethod обрабатывает GET /paymentMethod
func (h *ContentHandler) GetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	m, err := h.payments.GetPaymentMethod(ctx, id.ID)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "payment method retrieved successfully", m)
}

// SavePaymentMethod обрабатывает PUT /paymentMethod
func (h *ContentHandler) SavePaymentMethod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := IdentityFrom(ctx)
	if !ok {
		sendError(w, r, h.logger, session.ErrNotAuthenticated)
		return
	}

	var req api.PaymentMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		sendError(w, r, h.logger, badRequest("%s", err.Error()))
		return
	}

	m := &models.PaymentMethod{
		UserID:        id.ID,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		BankName:      req.BankName,
		UpdatedAt:     h.now(),
	}
	if err := h.payments.SavePaymentMethod(ctx, m); err != nil {
		sendError(w, r, h.logger, err)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, "payment method saved successfully", m)
}
