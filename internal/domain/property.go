package domain

import "time"

// ReviewStatusPending is the initial review status for imported properties.
const ReviewStatusPending = "pending"

// DefaultOrientation is applied when the source text carries no orientation.
const DefaultOrientation = "unspecified"

// CandidateProperty is the mapped, not-yet-persisted destination record for
// one listing. The mapper fills it; validation runs against it before any
// persistence attempt.
type CandidateProperty struct {
	ExternalID    string
	Name          string
	Description   string
	Address       string
	Latitude      float64
	Longitude     float64
	LocationID    *string
	Price         float64
	Size          float64
	ListingType   ListingType
	Category      PropertyCategory
	Orientation   string
	ReviewStatus  string
	ReferenceCode *string
	AgencyID      *string
	Phone         string
	Attributes    AttributeMap
	Photos        []PhotoAsset
}

// Property is the minimal persisted projection returned after a successful
// transactional write, uniquely keyed by ExternalID.
type Property struct {
	ID         string    `db:"id"`
	ExternalID string    `db:"external_id"`
	Name       string    `db:"name"`
	CreatedAt  time.Time `db:"created_at"`
}
