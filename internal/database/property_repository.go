package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/estatelink/property-importer/internal/domain"
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pqUniqueViolation = "23505"

// ErrDuplicateProperty is returned when a create hits the unique constraint
// on external_id. The caller treats it as an idempotent duplicate, not a
// write error.
var ErrDuplicateProperty = errors.New("property already exists for external id")

// PropertyRepository handles persistence of imported properties.
type PropertyRepository struct {
	db *sqlx.DB
}

// NewPropertyRepository creates a new property repository.
func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// FindByExternalID performs the indexed duplicate lookup. A missing record
// returns (nil, nil).
func (r *PropertyRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Property, error) {
	const query = `
		SELECT id, external_id, name, created_at
		FROM properties
		WHERE external_id = $1
	`

	var p domain.Property
	err := r.db.GetContext(ctx, &p, query, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find property by external id: %w", err)
	}

	return &p, nil
}

// Create persists the candidate property and its photo variants in a single
// transaction and returns the minimal persisted projection. A unique
// violation on external_id yields ErrDuplicateProperty.
func (r *PropertyRepository) Create(ctx context.Context, candidate *domain.CandidateProperty) (*domain.Property, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertProperty = `
		INSERT INTO properties (
			external_id, name, description, address, latitude, longitude,
			location_id, price, size, listing_type, category, orientation,
			review_status, reference_code, agency_id, phone, attributes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, external_id, name, created_at
	`

	var persisted domain.Property
	err = tx.QueryRowxContext(
		ctx,
		insertProperty,
		candidate.ExternalID,
		candidate.Name,
		candidate.Description,
		candidate.Address,
		candidate.Latitude,
		candidate.Longitude,
		candidate.LocationID,
		candidate.Price,
		candidate.Size,
		string(candidate.ListingType),
		string(candidate.Category),
		candidate.Orientation,
		candidate.ReviewStatus,
		candidate.ReferenceCode,
		candidate.AgencyID,
		candidate.Phone,
		candidate.Attributes,
	).StructScan(&persisted)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return nil, ErrDuplicateProperty
		}
		return nil, fmt.Errorf("failed to insert property: %w", err)
	}

	const insertPhoto = `
		INSERT INTO property_photos (id, property_id, size_tag, storage_key, public_url)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, asset := range candidate.Photos {
		for _, variant := range asset.Variants {
			if _, photoErr := tx.ExecContext(ctx, insertPhoto,
				asset.ID, persisted.ID, variant.SizeTag, variant.StorageKey, variant.PublicURL,
			); photoErr != nil {
				return nil, fmt.Errorf("failed to insert photo variant: %w", photoErr)
			}
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, fmt.Errorf("failed to commit property: %w", commitErr)
	}

	return &persisted, nil
}
