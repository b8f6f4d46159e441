package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/rentspace/internal/models"
)

// AddChatMessage stores a chat message
func (s *Storage) AddChatMessage(ctx context.Context, m *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, sender_id, receiver_id, message_type, message_content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, m.ID, m.SenderID, m.ReceiverID, m.MessageType, m.MessageContent, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	return nil
}

// ListChatRoom returns the conversation of two users, oldest first
func (s *Storage) ListChatRoom(ctx context.Context, userID, peerID string) ([]*models.ChatMessage, error) {
	query := `
		SELECT id, sender_id, receiver_id, message_type, message_content, created_at
		FROM chat_messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, peerID, peerID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	messages := []*models.ChatMessage{}
	for rows.Next() {
		m := &models.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.MessageType, &m.MessageContent, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return messages, nil
}
