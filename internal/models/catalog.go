package models

// Catalog column names read by the matcher and the loaders.
const (
	FieldBrand        = "Brand"
	FieldModel        = "Model"
	FieldYear         = "Year"
	FieldDisplacement = "Displacement (CC)"
	FieldMSRP         = "Estimated MSRP (USD)"
	FieldSeatHeight   = "Seat Height (mm)"
	FieldCylinder     = "Engine Cylinder"
	FieldCategory     = "Category"
)

// CatalogRecord is one catalog row keyed by column header. Columns the
// matcher does not read are carried through unchanged.
type CatalogRecord map[string]string

func (r CatalogRecord) Get(field string) string {
	if r == nil {
		return ""
	}
	return r[field]
}

// MatchSummary describes one filter run.
type MatchSummary struct {
	RecommendationID string `json:"recommendationId"`
	Scanned          int    `json:"scanned"`
	Matched          int    `json:"matched"`
	Source           string `json:"source"`
}
