package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/storage"
)

// CreateSupportMessage stores a new ticket
func (s *Storage) CreateSupportMessage(ctx context.Context, m *models.SupportMessage) error {
	query := `
		INSERT INTO support_messages (id, user_id, email, message, resolved, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, m.ID, m.UserID, m.Email, m.Message, boolToInt(m.Resolved), m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert support message: %w", err)
	}

	return nil
}

// ListSupportMessages returns a page of tickets and the total count for the filter
func (s *Storage) ListSupportMessages(ctx context.Context, resolved bool, offset, limit int) ([]*models.SupportMessage, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM support_messages WHERE resolved = ?`, boolToInt(resolved)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count support messages: %w", err)
	}

	query := `
		SELECT id, user_id, email, message, resolved, created_at
		FROM support_messages
		WHERE resolved = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, boolToInt(resolved), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query support messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	messages := []*models.SupportMessage{}
	for rows.Next() {
		m := &models.SupportMessage{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.Email, &m.Message, &m.Resolved, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan support message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return messages, total, nil
}

// ResolveSupportMessage marks a ticket resolved
func (s *Storage) ResolveSupportMessage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE support_messages SET resolved = 1 WHERE id = ? AND resolved = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to resolve support message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 1 {
		return nil
	}

	// Ничего не обновили: либо тикета нет, либо он уже закрыт
	var resolved bool
	err = s.db.QueryRowContext(ctx, `SELECT resolved FROM support_messages WHERE id = ?`, id).Scan(&resolved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to get support message: %w", err)
	}

	return storage.ErrAlreadyResolved
}
