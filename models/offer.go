package models

// Offer is the canonical listing record emitted by the pipeline.
// ID is always present and non-empty; candidates without an identifier
// are dropped during normalization, never emitted with an empty ID.
type Offer struct {
	// ID is the site-native listing identifier.
	ID string `json:"id"`

	// LotUUID aliases ID and serves as the deduplication key.
	LotUUID string `json:"lot_uuid"`

	// Price is the listing price in rubles, nil when the source
	// candidate carried no price field.
	Price *int64 `json:"price,omitempty"`

	// Area is the total area in square meters, nil when absent.
	Area *float64 `json:"area,omitempty"`

	// URL is the canonical detail-page URL derived from ID.
	URL string `json:"url"`

	// Type is the deal classification for this pipeline run, e.g. "sale".
	Type string `json:"type"`
}
