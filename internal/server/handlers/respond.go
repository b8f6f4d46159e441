package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/iudanet/rentspace/internal/crypto"
	"github.com/iudanet/rentspace/internal/server/otpguard"
	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/internal/server/storage"
	"github.com/iudanet/rentspace/pkg/api"
)

const (
	maxBodySize = 1 << 20

	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// requestError ошибка клиента с готовым HTTP статусом
type requestError struct {
	message string
	status  int
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(format string, args ...any) error {
	return &requestError{message: fmt.Sprintf(format, args...), status: http.StatusBadRequest}
}

func unauthorized(message string) error {
	return &requestError{message: message, status: http.StatusUnauthorized}
}

// errorStatus сопоставляет ошибку HTTP статусу и сообщению для клиента.
// Для неизвестных ошибок возвращает 500 без подробностей.
func errorStatus(err error) (int, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.message
	case errors.Is(err, session.ErrNotAuthenticated),
		errors.Is(err, session.ErrNotLoggedIn):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, session.ErrAccessDenied):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, crypto.ErrOTPInvalid),
		errors.Is(err, crypto.ErrOTPExpired),
		errors.Is(err, otpguard.ErrAlreadyUsed):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, otpguard.ErrTooManyAttempts):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, storage.ErrAlreadyResolved):
		return http.StatusBadRequest, "already resolved"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// sendJSON отправляет ответ в общем конверте
func sendJSON(w http.ResponseWriter, logger *slog.Logger, status int, message string, data any) {
	env := api.Envelope{
		Status:  api.StatusSuccess,
		Message: message,
		Data:    data,
	}
	switch {
	case status >= http.StatusInternalServerError:
		env.Status = api.StatusError
	case status >= http.StatusBadRequest:
		env.Status = api.StatusFail
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет ошибку с кодом из errorStatus.
// Ошибки сервера пишутся в лог с подробностями, клиент их не видит.
func sendError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	} else {
		logger.WarnContext(r.Context(), "request rejected",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("reason", message))
	}
	sendJSON(w, logger, status, message, nil)
}

// decodeJSON читает тело запроса в v. Неизвестные поля игнорируются.
func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return badRequest("invalid request body")
	}
	return nil
}

// pagination читает page и limit из query
func pagination(r *http.Request) (page, limit int, err error) {
	page, limit = defaultPage, defaultLimit

	if v := r.URL.Query().Get("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 {
			return 0, 0, badRequest("page must be a positive integer")
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			return 0, 0, badRequest("limit must be a positive integer")
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	// смещение (page-1)*limit должно помещаться в int
	if page > math.MaxInt/limit {
		return 0, 0, badRequest("page is too large")
	}

	return page, limit, nil
}

// WriteJSON отправляет ответ в общем конверте вне обработчиков (middleware)
func WriteJSON(w http.ResponseWriter, logger *slog.Logger, status int, message string, data any) {
	sendJSON(w, logger, status, message, data)
}

// WriteError отправляет ошибку в общем конверте вне обработчиков (middleware)
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	sendError(w, r, logger, err)
}
