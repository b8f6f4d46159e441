package storage

import (
	"context"

	"github.com/iudanet/rentspace/internal/models"
)

// ProfileStorage defines interface for user profile persistence
type ProfileStorage interface {
	// GetProfile retrieves the profile of a user.
	// Returns ErrNotFound if the profile was never saved
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)

	// SaveProfile creates or replaces the profile
	SaveProfile(ctx context.Context, profile *models.Profile) error
}

// SettingsStorage defines interface for user settings persistence
type SettingsStorage interface {
	// GetSettings retrieves user settings.
	// Returns ErrNotFound if settings were never created
	GetSettings(ctx context.Context, userID string) (*models.Settings, error)

	// SaveSettings creates or replaces user settings
	SaveSettings(ctx context.Context, settings *models.Settings) error
}
