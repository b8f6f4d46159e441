package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/storage"
)

// GetProfile retrieves the profile of a user
func (s *Storage) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE user_id = ?`, userID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile := &models.Profile{}
	if err := json.Unmarshal([]byte(data), profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	profile.UserID = userID

	return profile, nil
}

// SaveProfile creates or replaces the profile
func (s *Storage) SaveProfile(ctx context.Context, profile *models.Profile) error {
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	query := `
		INSERT INTO profiles (user_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, profile.UserID, string(data), profile.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// GetSettings retrieves user settings
func (s *Storage) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM settings WHERE user_id = ?`, userID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	settings := &models.Settings{}
	if err := json.Unmarshal([]byte(data), settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	settings.UserID = userID

	return settings, nil
}

// SaveSettings creates or replaces user settings
func (s *Storage) SaveSettings(ctx context.Context, settings *models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	query := `
		INSERT INTO settings (user_id, data) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET data = excluded.data
	`
	if _, err := s.db.ExecContext(ctx, query, settings.UserID, string(data)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
