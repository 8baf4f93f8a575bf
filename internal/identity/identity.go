// Package identity derives stable external identifiers for listings and
// checks them against already-persisted records.
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/estatelink/property-importer/internal/domain"
)

const (
	idPrefix    = "ext-"
	idHexLength = 16
)

// PropertyLookup performs the indexed duplicate lookup against the
// destination store.
type PropertyLookup interface {
	FindByExternalID(ctx context.Context, externalID string) (*domain.Property, error)
}

// ComputeID derives the deterministic dedup key for a source record.
// Identical salient content always yields the same identifier, regardless
// of import run.
func ComputeID(rec domain.SourceRecord) string {
	salient := normalize(rec.Title) + "|" + normalize(rec.Address) + "|" + normalize(rec.Location)
	sum := sha256.Sum256([]byte(salient))
	return idPrefix + hex.EncodeToString(sum[:])[:idHexLength]
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Checker wraps the duplicate lookup. The store's uniqueness constraint is
// the authoritative guard; this check is an optimization that skips the
// network-bound enrichment stages for known records.
type Checker struct {
	lookup PropertyLookup
}

// NewChecker creates a duplicate checker over the given lookup.
func NewChecker(lookup PropertyLookup) *Checker {
	return &Checker{lookup: lookup}
}

// CheckDuplicate returns the existing record for the given external id, or
// nil when the listing has not been imported before.
func (c *Checker) CheckDuplicate(ctx context.Context, externalID string) (*domain.Property, error) {
	return c.lookup.FindByExternalID(ctx, externalID)
}
