package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iudanet/rentspace/internal/models"
)

var (
	sessionsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentspace_sessions_issued_total",
			Help: "Total number of issued sessions",
		},
		[]string{"kind"},
	)

	// Labels:
	//   - outcome: "ok", "not_authenticated", "invalid_token", "access_denied", "error"
	sessionVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentspace_session_verifications_total",
			Help: "Total number of session verifications by outcome",
		},
		[]string{"outcome"},
	)

	// Labels:
	//   - outcome: "renewed" (same refresh token), "reissued" (new pair), "rejected"
	sessionRotations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentspace_session_rotations_total",
			Help: "Total number of refresh token rotations by outcome",
		},
		[]string{"kind", "outcome"},
	)

	sessionsRevoked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentspace_sessions_revoked_total",
			Help: "Total number of revoked sessions (logout)",
		},
		[]string{"kind"},
	)
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	default:
		return "error"
	}
}

// TokenCounter считает живые refresh токены одного вида учетных записей
type TokenCounter interface {
	CountRefreshTokens(ctx context.Context) (int, error)
}

// LiveSessionsCollector отдает число живых refresh токенов по видам учетных записей.
// Хранилище опрашивается при каждом сборе метрик.
type LiveSessionsCollector struct {
	counters map[models.PrincipalKind]TokenCounter
	logger   *slog.Logger
	desc     *prometheus.Desc
	timeout  time.Duration
}

// NewLiveSessionsCollector создает коллектор. Его нужно зарегистрировать через prometheus.Register.
func NewLiveSessionsCollector(counters map[models.PrincipalKind]TokenCounter, logger *slog.Logger) *LiveSessionsCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveSessionsCollector{
		counters: counters,
		logger:   logger,
		timeout:  2 * time.Second,
		desc: prometheus.NewDesc(
			"rentspace_live_refresh_tokens",
			"Number of refresh tokens currently held in storage",
			[]string{"kind"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *LiveSessionsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector
func (c *LiveSessionsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	for kind, counter := range c.counters {
		n, err := counter.CountRefreshTokens(ctx)
		if err != nil {
			c.logger.Error("Failed to count refresh tokens",
				slog.String("kind", kind.String()),
				slog.Any("error", err))
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), kind.String())
	}
}
