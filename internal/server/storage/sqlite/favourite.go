package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/storage"
)

// ToggleFavourite adds the property to favourites or removes it if present
func (s *Storage) ToggleFavourite(ctx context.Context, userID, propertyID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM favourites WHERE user_id = ? AND property_id = ?`, userID, propertyID)
	if err != nil {
		return false, fmt.Errorf("failed to delete favourite: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	favourite := removed == 0
	if favourite {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO favourites (user_id, property_id, created_at) VALUES (?, ?, ?)`,
			userID, propertyID, time.Now().UTC())
		if err != nil {
			if isForeignKeyViolation(err) {
				return false, storage.ErrNotFound
			}
			return false, fmt.Errorf("failed to insert favourite: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit favourite: %w", err)
	}

	return favourite, nil
}

// ListFavourites returns favourite listings of a user
func (s *Storage) ListFavourites(ctx context.Context, userID string) ([]*models.Property, error) {
	query := `
		SELECT ` + prefixedPropertyColumns("p") + `
		FROM favourites f
		JOIN properties p ON p.id = f.property_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC
	`
	return s.queryProperties(ctx, query, userID)
}

func prefixedPropertyColumns(alias string) string {
	return alias + ".id, " + alias + ".user_id, " + alias + ".property_title, " +
		alias + ".listing_type, " + alias + ".property_category, " + alias + ".lon, " +
		alias + ".lat, " + alias + ".rent_amount, " + alias + ".rent_currency, " +
		alias + ".rent_category, " + alias + ".photos_videos, " + alias + ".property_features, " +
		alias + ".environment_facilities, " + alias + ".created_at, " + alias + ".updated_at"
}
