package matching

import (
	"fmt"
	"iter"
	"strings"

	"bike-recommender/internal/models"
)

// UnparsablePolicy decides what happens to a numeric check when the catalog
// cell has no leading digits.
type UnparsablePolicy string

const (
	// UnparsableReject drops the record.
	UnparsableReject UnparsablePolicy = "reject"
	// UnparsablePass skips that one check and evaluates the rest.
	UnparsablePass UnparsablePolicy = "pass"
)

// ParseUnparsablePolicy reads a configured policy name. Blank means reject.
func ParseUnparsablePolicy(name string) (UnparsablePolicy, error) {
	switch UnparsablePolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", UnparsableReject:
		return UnparsableReject, nil
	case UnparsablePass:
		return UnparsablePass, nil
	default:
		return "", fmt.Errorf("unknown unparsable policy %q", name)
	}
}

// Filter applies criteria to catalog records under a fixed policy.
type Filter struct {
	criteria models.FilterCriteria
	policy   UnparsablePolicy
}

// NewFilter prepares a filter. Token lists are lower-cased once here so the
// per-record predicate does no allocation beyond the cell lower-casing.
func NewFilter(criteria models.FilterCriteria, policy UnparsablePolicy) *Filter {
	if policy != UnparsablePass {
		policy = UnparsableReject
	}
	c := criteria
	c.BannedCylinderTokens = lowerAll(criteria.BannedCylinderTokens)
	c.InterestedCategories = lowerAll(criteria.InterestedCategories)
	c.AllowedBrands = append([]string{}, criteria.AllowedBrands...)
	return &Filter{criteria: c, policy: policy}
}

// FilterCatalog returns the records satisfying every criterion, in source
// order, rejecting records with unparsable numeric cells. The result is
// never nil; no matches is an empty slice.
func FilterCatalog(records []models.CatalogRecord, criteria models.FilterCriteria) []models.CatalogRecord {
	return NewFilter(criteria, UnparsableReject).Apply(records)
}

// Matching is the lazy form of FilterCatalog.
func Matching(records []models.CatalogRecord, criteria models.FilterCriteria) iter.Seq[models.CatalogRecord] {
	return NewFilter(criteria, UnparsableReject).Seq(records)
}

// Apply returns the matching records in source order. Duplicates survive.
func (f *Filter) Apply(records []models.CatalogRecord) []models.CatalogRecord {
	out := []models.CatalogRecord{}
	for record := range f.Seq(records) {
		out = append(out, record)
	}
	return out
}

// Seq yields matching records lazily in source order.
func (f *Filter) Seq(records []models.CatalogRecord) iter.Seq[models.CatalogRecord] {
	return func(yield func(models.CatalogRecord) bool) {
		for _, record := range records {
			if f.Match(record) && !yield(record) {
				return
			}
		}
	}
}

// Match reports whether a single record satisfies every criterion.
func (f *Filter) Match(record models.CatalogRecord) bool {
	c := f.criteria

	if !f.intInRange(record.Get(models.FieldDisplacement), c.MinCC, c.MaxCC) {
		return false
	}
	if !f.priceInRange(record.Get(models.FieldMSRP), c.MinPrice, c.MaxPrice) {
		return false
	}
	if containsAny(strings.ToLower(record.Get(models.FieldCylinder)), c.BannedCylinderTokens) {
		return false
	}
	if len(c.InterestedCategories) > 0 &&
		!containsAny(strings.ToLower(record.Get(models.FieldCategory)), c.InterestedCategories) {
		return false
	}
	if !containsAny(record.Get(models.FieldBrand), c.AllowedBrands) {
		return false
	}
	return f.seatHeightFits(record.Get(models.FieldSeatHeight), c.MaxSeatHeight)
}

func (f *Filter) intInRange(cell string, lo, hi int) bool {
	v, ok := parseLeadingInt(cell)
	if !ok {
		return f.policy == UnparsablePass
	}
	return v >= lo && v <= hi
}

func (f *Filter) priceInRange(cell string, lo, hi float64) bool {
	v, ok := parseLeadingInt(cell)
	if !ok {
		return f.policy == UnparsablePass
	}
	return float64(v) >= lo && float64(v) <= hi
}

func (f *Filter) seatHeightFits(cell string, ceiling float64) bool {
	v, ok := parseLeadingInt(cell)
	if !ok {
		return f.policy == UnparsablePass
	}
	return float64(v) <= ceiling
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}
