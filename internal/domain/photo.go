package domain

// PhotoVariant is one stored rendition of a photo at a given size.
type PhotoVariant struct {
	SizeTag    string `db:"size_tag"`
	StorageKey string `db:"storage_key"`
	PublicURL  string `db:"public_url"`
}

// PhotoAsset aggregates the variants of a single photo under one generated
// identifier. It belongs to exactly one listing.
type PhotoAsset struct {
	ID       string
	Variants []PhotoVariant
}
