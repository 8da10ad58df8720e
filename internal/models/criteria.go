package models

// Widest bounds; a blank questionnaire produces exactly these.
const (
	DefaultMinCC         = 0
	DefaultMaxCC         = 5000
	DefaultMinPrice      = 0.0
	DefaultMaxPrice      = 100000.0
	DefaultMaxSeatHeight = 5000.0
)

// FilterCriteria is the set of constraints a catalog record must satisfy.
// Ranges are inclusive. MinCC > MaxCC (or MinPrice > MaxPrice) is allowed
// and simply matches nothing.
type FilterCriteria struct {
	MinCC                int      `json:"minCC"`
	MaxCC                int      `json:"maxCC"`
	MinPrice             float64  `json:"minPrice"`
	MaxPrice             float64  `json:"maxPrice"`
	MaxSeatHeight        float64  `json:"maxSeatHeight"`
	BannedCylinderTokens []string `json:"bannedCylinderTokens"`
	InterestedCategories []string `json:"interestedCategories"`
	AllowedBrands        []string `json:"allowedBrands"`
}

// DefaultCriteria returns the most permissive bounds with empty token sets.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		MinCC:                DefaultMinCC,
		MaxCC:                DefaultMaxCC,
		MinPrice:             DefaultMinPrice,
		MaxPrice:             DefaultMaxPrice,
		MaxSeatHeight:        DefaultMaxSeatHeight,
		BannedCylinderTokens: []string{},
		InterestedCategories: []string{},
		AllowedBrands:        []string{},
	}
}

// Inverted reports whether a range is empty by construction.
func (c FilterCriteria) Inverted() bool {
	return c.MinCC > c.MaxCC || c.MinPrice > c.MaxPrice
}
