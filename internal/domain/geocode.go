package domain

// GeocodeResult holds resolved coordinates plus an optional link into the
// location hierarchy.
type GeocodeResult struct {
	Latitude   float64
	Longitude  float64
	LocationID *string
}

// Location is one node in the location hierarchy (municipality,
// neighbourhood) known to the destination store.
type Location struct {
	ID       string  `db:"id"`
	Name     string  `db:"name"`
	ParentID *string `db:"parent_id"`
}
