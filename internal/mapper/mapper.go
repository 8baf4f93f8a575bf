// Package mapper shapes normalized listings into destination records,
// validates them, and persists them transactionally.
package mapper

import (
	"context"
	"errors"
	"fmt"

	"github.com/estatelink/property-importer/internal/database"
	"github.com/estatelink/property-importer/internal/domain"
	"github.com/estatelink/property-importer/internal/logger"
)

// ErrDuplicate is returned by Persist when the destination store's unique
// constraint on external_id fires. It is an idempotent no-op, not a failure.
var ErrDuplicate = errors.New("duplicate property")

// ValidationError carries the list of required fields missing from a mapped
// record. It is a hard per-listing failure; no persistence is attempted.
type ValidationError struct {
	MissingFields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("record is missing required fields: %v", e.MissingFields)
}

// Store persists candidate records.
type Store interface {
	Create(ctx context.Context, candidate *domain.CandidateProperty) (*domain.Property, error)
}

// Mapper maps and persists listings.
type Mapper struct {
	store           Store
	defaultAgencyID string
	logger          logger.Interface
}

// NewMapper creates a mapper. defaultAgencyID may be empty; records then
// carry no agency association.
func NewMapper(store Store, defaultAgencyID string, log logger.Interface) *Mapper {
	return &Mapper{
		store:           store,
		defaultAgencyID: defaultAgencyID,
		logger:          log.WithComponent("mapper"),
	}
}

// ToRecord maps the enriched listing into the destination record shape,
// applying configured defaults.
func (m *Mapper) ToRecord(
	rec domain.SourceRecord,
	externalID string,
	normalized *domain.NormalizedListing,
	geo domain.GeocodeResult,
	photos []domain.PhotoAsset,
) *domain.CandidateProperty {
	candidate := &domain.CandidateProperty{
		ExternalID:    externalID,
		Name:          normalized.Name,
		Description:   normalized.Description,
		Address:       rec.Address,
		Latitude:      geo.Latitude,
		Longitude:     geo.Longitude,
		LocationID:    geo.LocationID,
		Price:         normalized.Price,
		Size:          normalized.Size,
		ListingType:   normalized.ListingType,
		Category:      normalized.Category,
		Orientation:   domain.DefaultOrientation,
		ReviewStatus:  domain.ReviewStatusPending,
		ReferenceCode: normalized.ReferenceCode,
		Phone:         rec.Phone,
		Attributes:    normalized.Attributes,
		Photos:        photos,
	}

	if m.defaultAgencyID != "" {
		agencyID := m.defaultAgencyID
		candidate.AgencyID = &agencyID
	}

	return candidate
}

// Validate checks the fixed set of required fields and returns the missing
// ones. An empty result means the record may be persisted.
func (m *Mapper) Validate(candidate *domain.CandidateProperty) []string {
	var missing []string

	if candidate.Name == "" {
		missing = append(missing, "name")
	}
	if candidate.Latitude == 0 && candidate.Longitude == 0 {
		missing = append(missing, "coordinates")
	}
	if candidate.Address == "" {
		missing = append(missing, "address")
	}
	if candidate.Price <= 0 {
		missing = append(missing, "price")
	}
	if candidate.Size <= 0 {
		missing = append(missing, "size")
	}
	if candidate.Description == "" {
		missing = append(missing, "description")
	}
	if candidate.Category == "" {
		missing = append(missing, "type")
	}
	if candidate.ListingType == "" {
		missing = append(missing, "listing_type")
	}

	return missing
}

// Persist validates and writes the record inside a single transaction. A
// unique-constraint hit on external_id returns ErrDuplicate; other
// persistence failures are logged with identifying fields and returned.
func (m *Mapper) Persist(ctx context.Context, candidate *domain.CandidateProperty) (*domain.Property, error) {
	if missing := m.Validate(candidate); len(missing) > 0 {
		return nil, &ValidationError{MissingFields: missing}
	}

	persisted, err := m.store.Create(ctx, candidate)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateProperty) {
			m.logger.Info("property already persisted, skipping",
				"external_id", candidate.ExternalID)
			return nil, ErrDuplicate
		}
		m.logger.Error("failed to persist property",
			"external_id", candidate.ExternalID,
			"name", candidate.Name,
			"address", candidate.Address,
			"error", err)
		return nil, fmt.Errorf("persist property %s: %w", candidate.ExternalID, err)
	}

	return persisted, nil
}
