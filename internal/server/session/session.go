// Package session выдает, проверяет, ротирует и отзывает пары access/refresh токенов.
//
// Access токен несет id учетной записи и nonce сессии и живет AccessTTL.
// Refresh токен несет только nonce и срока не имеет: сессия жива,
// пока строка refresh токена числится за учетной записью в хранилище.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/jwt"
	"github.com/iudanet/rentspace/internal/server/storage"
)

const nonceSize = 16

// Pair пара токенов одной сессии
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Identity учетная запись, от имени которой выполняется запрос
type Identity struct {
	Kind models.PrincipalKind
	ID   string
}

// Manager связывает Codec с хранилищами учетных записей разных видов
type Manager struct {
	codec    *jwt.Codec
	stores   map[models.PrincipalKind]storage.PrincipalStore
	logger   *slog.Logger
	newNonce func() (string, error)
}

// NewManager создает Manager. stores должен содержать хотя бы один вид учетных записей.
func NewManager(codec *jwt.Codec, stores map[models.PrincipalKind]storage.PrincipalStore, logger *slog.Logger) (*Manager, error) {
	if codec == nil {
		return nil, fmt.Errorf("session: codec is required")
	}
	if len(stores) == 0 {
		return nil, fmt.Errorf("session: at least one principal store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	copied := make(map[models.PrincipalKind]storage.PrincipalStore, len(stores))
	for kind, s := range stores {
		copied[kind] = s
	}

	return &Manager{
		codec:    codec,
		stores:   copied,
		logger:   logger,
		newNonce: randomNonce,
	}, nil
}

// AccessTTL время жизни access токена
func (m *Manager) AccessTTL() time.Duration {
	return m.codec.AccessTTL()
}

// Issue создает новую сессию для уже аутентифицированной учетной записи
// и добавляет refresh токен в ее набор.
func (m *Manager) Issue(ctx context.Context, kind models.PrincipalKind, principalID string) (Pair, error) {
	store, err := m.store(kind)
	if err != nil {
		return Pair{}, err
	}

	pair, err := m.mint(principalID)
	if err != nil {
		return Pair{}, err
	}

	if err := store.AddRefreshToken(ctx, principalID, pair.RefreshToken); err != nil {
		return Pair{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	sessionsIssued.WithLabelValues(kind.String()).Inc()
	m.logger.DebugContext(ctx, "Session issued",
		slog.String("kind", kind.String()),
		slog.String("principal_id", principalID))

	return pair, nil
}

// Verify проверяет пару токенов запроса и возвращает учетную запись.
// kinds перечисляет допустимые виды учетных записей в порядке поиска;
// пустой список означает все настроенные виды (сначала user, затем admin).
// Хранилище не изменяется.
func (m *Manager) Verify(ctx context.Context, access, refresh string, kinds ...models.PrincipalKind) (Identity, error) {
	id, err := m.verify(ctx, access, refresh, kinds)
	sessionVerifications.WithLabelValues(outcome(err)).Inc()
	return id, err
}

func (m *Manager) verify(ctx context.Context, access, refresh string, kinds []models.PrincipalKind) (Identity, error) {
	if access == "" {
		return Identity{}, ErrNotAuthenticated
	}

	// неверная подпись и истекший срок снаружи неразличимы
	claims, err := m.codec.VerifyAccess(access)
	if err != nil {
		return Identity{}, ErrNotAuthenticated
	}

	principal, kind, err := m.lookup(ctx, claims.PrincipalID(), kinds)
	if err != nil {
		return Identity{}, err
	}

	if refresh == "" {
		return Identity{}, ErrInvalidToken
	}
	refreshClaims, err := m.codec.VerifyRefresh(refresh)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	if refreshClaims.Nonce != claims.Nonce {
		return Identity{}, ErrInvalidToken
	}
	if !principal.HasRefreshToken(refresh) {
		return Identity{}, ErrInvalidToken
	}

	return Identity{Kind: kind, ID: principal.ID}, nil
}

// lookup ищет учетную запись по id во всех допустимых видах по порядку
func (m *Manager) lookup(ctx context.Context, id string, kinds []models.PrincipalKind) (*models.Principal, models.PrincipalKind, error) {
	if len(kinds) == 0 {
		kinds = []models.PrincipalKind{models.KindUser, models.KindAdmin}
	}

	for _, kind := range kinds {
		store, ok := m.stores[kind]
		if !ok {
			continue
		}

		p, err := store.FindPrincipal(ctx, id)
		if err == nil {
			return p, kind, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, "", fmt.Errorf("failed to find %s: %w", kind, err)
		}
	}

	return nil, "", ErrAccessDenied
}

// Rotate обменивает refresh токен на новый access токен.
//
// Владелец определяется только по хранилищу. Если подпись refresh токена
// проверяется, выдается access токен с тем же nonce, а refresh возвращается без изменений.
// Иначе старый refresh токен удаляется и выдается новая сессия (rotated=true).
func (m *Manager) Rotate(ctx context.Context, kind models.PrincipalKind, refresh string) (Pair, bool, error) {
	if refresh == "" {
		return Pair{}, false, ErrNotAuthenticated
	}

	store, err := m.store(kind)
	if err != nil {
		return Pair{}, false, err
	}

	principal, err := store.FindPrincipalByRefreshToken(ctx, refresh)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			sessionRotations.WithLabelValues(kind.String(), "rejected").Inc()
			return Pair{}, false, ErrNotLoggedIn
		}
		return Pair{}, false, fmt.Errorf("failed to find refresh token owner: %w", err)
	}

	claims, verifyErr := m.codec.VerifyRefresh(refresh)
	if verifyErr == nil {
		access, err := m.codec.SignAccess(principal.ID, claims.Nonce)
		if err != nil {
			return Pair{}, false, err
		}

		sessionRotations.WithLabelValues(kind.String(), "renewed").Inc()
		return Pair{AccessToken: access, RefreshToken: refresh}, false, nil
	}

	m.logger.WarnContext(ctx, "Refresh token failed verification, reissuing session",
		slog.String("kind", kind.String()),
		slog.String("principal_id", principal.ID),
		slog.Any("error", verifyErr))

	if err := store.RemoveRefreshToken(ctx, principal.ID, refresh); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			// токен успели отозвать параллельным запросом
			sessionRotations.WithLabelValues(kind.String(), "rejected").Inc()
			return Pair{}, false, ErrNotLoggedIn
		}
		return Pair{}, false, fmt.Errorf("failed to remove refresh token: %w", err)
	}

	pair, err := m.Issue(ctx, kind, principal.ID)
	if err != nil {
		return Pair{}, false, err
	}

	sessionRotations.WithLabelValues(kind.String(), "reissued").Inc()
	return pair, true, nil
}

// Revoke завершает сессию: удаляет ровно один refresh токен.
// Повторный отзыв того же токена не считается ошибкой.
func (m *Manager) Revoke(ctx context.Context, kind models.PrincipalKind, principalID, refresh string) error {
	if refresh == "" {
		return ErrNotAuthenticated
	}

	store, err := m.store(kind)
	if err != nil {
		return err
	}

	err = store.RemoveRefreshToken(ctx, principalID, refresh)
	switch {
	case err == nil:
		sessionsRevoked.WithLabelValues(kind.String()).Inc()
		return nil
	case errors.Is(err, storage.ErrTokenNotFound):
		return nil
	default:
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
}

func (m *Manager) store(kind models.PrincipalKind) (storage.PrincipalStore, error) {
	s, ok := m.stores[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return s, nil
}

func (m *Manager) mint(principalID string) (Pair, error) {
	nonce, err := m.newNonce()
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	access, err := m.codec.SignAccess(principalID, nonce)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.codec.SignRefresh(nonce)
	if err != nil {
		return Pair{}, err
	}

	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func randomNonce() (string, error) {
	b := make([]byte, nonceSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
