package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/storage"
)

// CredentialStore учетные записи одного вида поверх общей базы.
// Пользователи и администраторы лежат в разных таблицах,
// refresh токены обоих видов в общей таблице refresh_tokens.
type CredentialStore struct {
	db    *sql.DB
	kind  models.PrincipalKind
	table string
}

var _ storage.CredentialStore = (*CredentialStore)(nil)

// Credentials возвращает хранилище учетных записей указанного вида
func (s *Storage) Credentials(kind models.PrincipalKind) *CredentialStore {
	table := "users"
	if kind == models.KindAdmin {
		table = "admins"
	}

	return &CredentialStore{db: s.db, kind: kind, table: table}
}

// CreatePrincipal stores a new principal
func (c *CredentialStore) CreatePrincipal(ctx context.Context, p *models.Principal) error {
	query := `
		INSERT INTO ` + c.table + ` (id, name, email, password, verified, active, forget_password, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		strings.ToLower(p.Email),
		p.Password,
		boolToInt(p.Verified),
		boolToInt(p.Active),
		boolToInt(p.ForgetPassword),
		p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert %s: %w", c.kind, err)
	}

	return nil
}

// FindPrincipal returns the principal by id together with its refresh tokens
func (c *CredentialStore) FindPrincipal(ctx context.Context, id string) (*models.Principal, error) {
	return c.getOne(ctx, "id = ?", id)
}

// GetPrincipalByEmail returns the principal by email (case insensitive)
func (c *CredentialStore) GetPrincipalByEmail(ctx context.Context, email string) (*models.Principal, error) {
	return c.getOne(ctx, "email = ?", strings.ToLower(email))
}

// FindPrincipalByRefreshToken returns the principal holding token
func (c *CredentialStore) FindPrincipalByRefreshToken(ctx context.Context, token string) (*models.Principal, error) {
	query := `SELECT principal_id FROM refresh_tokens WHERE token = ? AND principal_kind = ?`

	var principalID string
	err := c.db.QueryRowContext(ctx, query, token, string(c.kind)).Scan(&principalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}

	return c.FindPrincipal(ctx, principalID)
}

// UpdatePrincipal overwrites name, password and status flags
func (c *CredentialStore) UpdatePrincipal(ctx context.Context, p *models.Principal) error {
	query := `
		UPDATE ` + c.table + `
		SET name = ?, password = ?, verified = ?, active = ?, forget_password = ?
		WHERE id = ?
	`

	result, err := c.db.ExecContext(ctx, query,
		p.Name,
		p.Password,
		boolToInt(p.Verified),
		boolToInt(p.Active),
		boolToInt(p.ForgetPassword),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", c.kind, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// AddRefreshToken appends token to the principal's set.
// Вставка идет через SELECT из таблицы учетных записей, поэтому токен
// для несуществующего id не создается.
func (c *CredentialStore) AddRefreshToken(ctx context.Context, principalID, token string) error {
	query := `
		INSERT INTO refresh_tokens (token, principal_kind, principal_id, created_at)
		SELECT ?, ?, id, ? FROM ` + c.table + ` WHERE id = ?
	`

	result, err := c.db.ExecContext(ctx, query, token, string(c.kind), time.Now().UTC(), principalID)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// RemoveRefreshToken removes exactly this token from the principal's set
func (c *CredentialStore) RemoveRefreshToken(ctx context.Context, principalID, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = ? AND principal_kind = ? AND principal_id = ?`

	result, err := c.db.ExecContext(ctx, query, token, string(c.kind), principalID)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrTokenNotFound
	}

	return nil
}

// CountRefreshTokens returns the number of live sessions of this kind
func (c *CredentialStore) CountRefreshTokens(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM refresh_tokens WHERE principal_kind = ?`, string(c.kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count refresh tokens: %w", err)
	}
	return n, nil
}

func (c *CredentialStore) getOne(ctx context.Context, where string, arg any) (*models.Principal, error) {
	query := `
		SELECT id, name, email, password, verified, active, forget_password, created_at
		FROM ` + c.table + `
		WHERE ` + where

	p := &models.Principal{Kind: c.kind}
	err := c.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Password,
		&p.Verified,
		&p.Active,
		&p.ForgetPassword,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", c.kind, err)
	}

	tokens, err := c.tokens(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.RefreshTokens = tokens

	return p, nil
}

func (c *CredentialStore) tokens(ctx context.Context, principalID string) ([]string, error) {
	query := `
		SELECT token FROM refresh_tokens
		WHERE principal_kind = ? AND principal_id = ?
		ORDER BY created_at, rowid
	`

	rows, err := c.db.QueryContext(ctx, query, string(c.kind), principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh tokens: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tokens, nil
}
