// Package domain defines the core types shared across the import pipeline.
package domain

// SourceRecord is one raw listing as delivered by the external feed.
// It is immutable for the lifetime of an import run.
type SourceRecord struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Location    string   `json:"location"`
	Price       float64  `json:"price"`
	Size        float64  `json:"size"`
	Phone       string   `json:"phone"`
	ImageURLs   []string `json:"images"`
}

// ListingType is the transaction type of a listing.
type ListingType string

const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
)

// PropertyCategory classifies the kind of property being listed.
type PropertyCategory string

const (
	CategoryApartment PropertyCategory = "apartment"
	CategoryHouse     PropertyCategory = "house"
	CategoryOffice    PropertyCategory = "office"
	CategoryLand      PropertyCategory = "land"
	CategoryOther     PropertyCategory = "other"
)

// NormalizedListing is the structured output of text normalization for one
// source record. It is consumed once by the property mapper and never
// persisted independently.
type NormalizedListing struct {
	Name          string
	Description   string
	Price         float64
	Size          float64
	ListingType   ListingType
	Category      PropertyCategory
	ReferenceCode *string
	Attributes    AttributeMap
}
