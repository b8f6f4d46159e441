package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/rentspace/internal/models"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

func createTestPrincipal(t *testing.T, ctx context.Context, store *CredentialStore) *models.Principal {
	t.Helper()

	id := uuid.New().String()
	p := &models.Principal{
		ID:        id,
		Name:      "Test " + id[:8],
		Email:     "test_" + id[:8] + "@example.com",
		Password:  "sealed-password",
		Verified:  true,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreatePrincipal(ctx, p))

	return p
}

func createTestProperty(t *testing.T, ctx context.Context, s *Storage, ownerID string, lon, lat float64) *models.Property {
	t.Helper()

	now := time.Now().UTC()
	p := &models.Property{
		ID:               uuid.New().String(),
		UserID:           ownerID,
		PropertyTitle:    "Flat " + ownerID[:4],
		ListingType:      models.ListingRent,
		PropertyCategory: "Apartment",
		Location:         models.GeoPoint{Coordinates: [2]float64{lon, lat}},
		RentPrice: models.RentPrice{
			Amount:   1200,
			Currency: models.CurrencyDollar,
			Category: models.RentMonthly,
		},
		PhotosVideos:          []string{"https://cdn.example.com/1.jpg"},
		PropertyFeatures:      []models.PropertyFeature{{Title: "Bedroom", Quantities: 2}},
		EnvironmentFacilities: []string{"Parking"},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	require.NoError(t, s.CreateProperty(ctx, p))

	return p
}
