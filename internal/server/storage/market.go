package storage

import (
	"context"

	"github.com/iudanet/rentspace/internal/models"
)

// PropertyStorage defines interface for property listings
type PropertyStorage interface {
	// CreateProperty stores a new listing
	CreateProperty(ctx context.Context, p *models.Property) error

	// GetProperty retrieves a listing by id.
	// Returns ErrNotFound if it doesn't exist
	GetProperty(ctx context.Context, id string) (*models.Property, error)

	// UpdateProperty replaces a listing owned by p.UserID.
	// Returns ErrNotFound if there is no such listing for this owner
	UpdateProperty(ctx context.Context, p *models.Property) error

	// DeleteProperty deletes a listing owned by userID.
	// Returns ErrNotFound if there is no such listing for this owner
	DeleteProperty(ctx context.Context, userID, id string) error

	// ListPropertiesByOwner returns listings of one owner, newest first
	ListPropertiesByOwner(ctx context.Context, userID string) ([]*models.Property, error)

	// ListPropertiesExcludingOwner returns all listings except those of userID
	ListPropertiesExcludingOwner(ctx context.Context, userID string) ([]*models.Property, error)
}

// FavouriteStorage defines interface for favourites
type FavouriteStorage interface {
	// ToggleFavourite adds the property to favourites or removes it if present.
	// Returns the new state
	ToggleFavourite(ctx context.Context, userID, propertyID string) (bool, error)

	// ListFavourites returns favourite listings of a user
	ListFavourites(ctx context.Context, userID string) ([]*models.Property, error)
}

// ReviewStorage defines interface for reviews
type ReviewStorage interface {
	// CreateReview stores a review
	CreateReview(ctx context.Context, r *models.Review) error

	// ListReviews returns reviews of a property, newest first
	ListReviews(ctx context.Context, propertyID string) ([]*models.Review, error)
}

// SupportStorage defines interface for support tickets
type SupportStorage interface {
	// CreateSupportMessage stores a new ticket
	CreateSupportMessage(ctx context.Context, m *models.SupportMessage) error

	// ListSupportMessages returns a page of tickets filtered by resolved flag and the total count
	ListSupportMessages(ctx context.Context, resolved bool, offset, limit int) ([]*models.SupportMessage, int, error)

	// ResolveSupportMessage marks a ticket resolved.
	// Returns ErrNotFound if it doesn't exist and ErrAlreadyResolved if it is already resolved
	ResolveSupportMessage(ctx context.Context, id string) error
}

// TermsStorage defines interface for terms and conditions
type TermsStorage interface {
	// GetTerms returns current terms.
	// Returns ErrNotFound if they were never set
	GetTerms(ctx context.Context) (*models.TermConditions, error)

	// SaveTerms creates or replaces terms
	SaveTerms(ctx context.Context, t *models.TermConditions) error
}

// PaymentStorage defines interface for payment methods
type PaymentStorage interface {
	// GetPaymentMethod returns the payment method of a user.
	// Returns ErrNotFound if it was never set
	GetPaymentMethod(ctx context.Context, userID string) (*models.PaymentMethod, error)

	// SavePaymentMethod creates or replaces the payment method of a user
	SavePaymentMethod(ctx context.Context, m *models.PaymentMethod) error
}

// ChatStorage defines interface for chat messages
type ChatStorage interface {
	// AddChatMessage stores a message
	AddChatMessage(ctx context.Context, m *models.ChatMessage) error

	// ListChatRoom returns messages exchanged between two users in both directions, oldest first
	ListChatRoom(ctx context.Context, userID, peerID string) ([]*models.ChatMessage, error)
}
