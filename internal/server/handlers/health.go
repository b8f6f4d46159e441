package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger проверка доступности зависимости (БД, Redis)
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc адаптер функции к Pinger
type PingFunc func(ctx context.Context) error

// Ping implements Pinger
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger  *slog.Logger
	deps    map[string]Pinger
	version string
	timeout time.Duration
}

// NewHealthHandler создает новый handler для health check.
// deps проверяются в Healthz.
func NewHealthHandler(logger *slog.Logger, version string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		version: version,
		deps:    deps,
		timeout: 2 * time.Second,
	}
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Checks  map[string]string `json:"checks,omitempty"`
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
}

// Health обрабатывает GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, h.logger, http.StatusOK, "ok", HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Livez обрабатывает GET /livez
// Процесс жив, зависимости не проверяются
func (h *HealthHandler) Livez(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Healthz обрабатывает GET /healthz
// Готовность к приему запросов: все зависимости отвечают
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Checks:  make(map[string]string, len(h.deps)),
	}
	status := http.StatusOK

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.logger.WarnContext(ctx, "dependency is not ready",
				slog.String("dependency", name),
				slog.Any("error", err))
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	sendJSON(w, h.logger, status, resp.Status, resp)
}
