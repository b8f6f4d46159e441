package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/storage"
)

const propertyColumns = `
	id, user_id, property_title, listing_type, property_category, lon, lat,
	rent_amount, rent_currency, rent_category, photos_videos, property_features,
	environment_facilities, created_at, updated_at`

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateProperty stores a new listing
func (s *Storage) CreateProperty(ctx context.Context, p *models.Property) error {
	photos, features, facilities, err := marshalPropertyLists(p)
	if err != nil {
		return err
	}

	query := `INSERT INTO properties (` + propertyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.PropertyTitle,
		p.ListingType,
		p.PropertyCategory,
		p.Location.Lon(),
		p.Location.Lat(),
		p.RentPrice.Amount,
		p.RentPrice.Currency,
		p.RentPrice.Category,
		photos,
		features,
		facilities,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert property: %w", err)
	}

	return nil
}

// GetProperty retrieves a listing by id
func (s *Storage) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id)

	p, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return p, nil
}

// UpdateProperty replaces a listing owned by p.UserID
func (s *Storage) UpdateProperty(ctx context.Context, p *models.Property) error {
	photos, features, facilities, err := marshalPropertyLists(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE properties SET
			property_title = ?, property_category = ?, lon = ?, lat = ?,
			rent_amount = ?, rent_currency = ?, rent_category = ?,
			photos_videos = ?, property_features = ?, environment_facilities = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		p.PropertyTitle,
		p.PropertyCategory,
		p.Location.Lon(),
		p.Location.Lat(),
		p.RentPrice.Amount,
		p.RentPrice.Currency,
		p.RentPrice.Category,
		photos,
		features,
		facilities,
		p.UpdatedAt,
		p.ID,
		p.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	return expectOneRow(result)
}

// DeleteProperty deletes a listing owned by userID
func (s *Storage) DeleteProperty(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	return expectOneRow(result)
}

// ListPropertiesByOwner returns listings of one owner, newest first
func (s *Storage) ListPropertiesByOwner(ctx context.Context, userID string) ([]*models.Property, error) {
	return s.queryProperties(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListPropertiesExcludingOwner returns all listings except those of userID
func (s *Storage) ListPropertiesExcludingOwner(ctx context.Context, userID string) ([]*models.Property, error) {
	return s.queryProperties(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE user_id <> ? ORDER BY created_at DESC`, userID)
}

func (s *Storage) queryProperties(ctx context.Context, query string, args ...any) ([]*models.Property, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	properties := []*models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return properties, nil
}

func scanProperty(row rowScanner) (*models.Property, error) {
	p := &models.Property{}
	var photos, features, facilities string

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.PropertyTitle,
		&p.ListingType,
		&p.PropertyCategory,
		&p.Location.Coordinates[0],
		&p.Location.Coordinates[1],
		&p.RentPrice.Amount,
		&p.RentPrice.Currency,
		&p.RentPrice.Category,
		&photos,
		&features,
		&facilities,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(photos), &p.PhotosVideos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal photos: %w", err)
	}
	if err := json.Unmarshal([]byte(features), &p.PropertyFeatures); err != nil {
		return nil, fmt.Errorf("failed to unmarshal features: %w", err)
	}
	if err := json.Unmarshal([]byte(facilities), &p.EnvironmentFacilities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal facilities: %w", err)
	}

	return p, nil
}

func marshalPropertyLists(p *models.Property) (photos, features, facilities string, err error) {
	b, err := json.Marshal(nonNil(p.PhotosVideos))
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal photos: %w", err)
	}
	photos = string(b)

	if p.PropertyFeatures == nil {
		p.PropertyFeatures = []models.PropertyFeature{}
	}
	b, err = json.Marshal(p.PropertyFeatures)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal features: %w", err)
	}
	features = string(b)

	b, err = json.Marshal(nonNil(p.EnvironmentFacilities))
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal facilities: %w", err)
	}
	facilities = string(b)

	return photos, features, facilities, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
