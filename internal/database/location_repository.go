package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/estatelink/property-importer/internal/domain"
)

// LocationRepository reads the location hierarchy.
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository creates a new location repository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// ListLocations returns all known location nodes ordered by name.
func (r *LocationRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	const query = `
		SELECT id, name, parent_id
		FROM locations
		ORDER BY name
	`

	var locations []domain.Location
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	return locations, nil
}
