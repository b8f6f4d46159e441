package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/storage"
)

// CreateReview stores a review
func (s *Storage) CreateReview(ctx context.Context, r *models.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, property_id, comment, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, r.ID, r.UserID, r.PropertyID, r.Comment, r.Rating, r.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}

	return nil
}

// ListReviews returns reviews of a property, newest first
func (s *Storage) ListReviews(ctx context.Context, propertyID string) ([]*models.Review, error) {
	query := `
		SELECT id, user_id, property_id, comment, rating, created_at
		FROM reviews
		WHERE property_id = ?
		ORDER BY created_at DESC, rowid DESC
	`

	rows, err := s.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	reviews := []*models.Review{}
	for rows.Next() {
		r := &models.Review{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.PropertyID, &r.Comment, &r.Rating, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return reviews, nil
}
