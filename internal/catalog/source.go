// Package catalog loads motorcycle records from a CSV file, a Postgres
// table or an Elasticsearch index, optionally through a Redis cache.
package catalog

import (
	"context"
	"sort"
	"strings"
	"time"

	"bike-recommender/internal/models"
)

// DefaultMinYear drops bikes built before the catalog's reliable range.
const DefaultMinYear = 1999

// RequiredFields are the columns the matcher reads. A source missing any of
// them cannot be filtered meaningfully.
var RequiredFields = []string{
	models.FieldBrand,
	models.FieldModel,
	models.FieldDisplacement,
	models.FieldMSRP,
	models.FieldSeatHeight,
	models.FieldCylinder,
	models.FieldCategory,
}

// Source yields a complete catalog snapshot.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Snapshot, error)
}

// Snapshot is one loaded catalog. Records are shared and must be treated
// as read-only.
type Snapshot struct {
	Source    string                 `json:"source"`
	Columns   []string               `json:"columns"`
	Records   []models.CatalogRecord `json:"records"`
	LoadedAt  time.Time              `json:"loadedAt"`
	FromCache bool                   `json:"-"`
	// FromMemo marks a snapshot served from process memory without
	// touching the backend or Redis.
	FromMemo bool `json:"-"`
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// keepYear reports whether a record is recent enough. Records whose year
// has no leading digits are kept; the year is informational.
func keepYear(record models.CatalogRecord, minYear int) bool {
	if minYear <= 0 {
		return true
	}
	year, ok := leadingInt(record.Get(models.FieldYear))
	if !ok {
		return true
	}
	return year >= minYear
}

func filterByYear(records []models.CatalogRecord, minYear int) []models.CatalogRecord {
	out := make([]models.CatalogRecord, 0, len(records))
	for _, r := range records {
		if keepYear(r, minYear) {
			out = append(out, r)
		}
	}
	return out
}

func leadingInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	n, digits := 0, 0
	for _, ch := range s {
		if ch < '0' || ch > '9' || digits >= 9 {
			break
		}
		n = n*10 + int(ch-'0')
		digits++
	}
	return n, digits > 0
}

// missingFields lists required columns absent from columns.
func missingFields(columns []string) []string {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c] = true
	}
	var missing []string
	for _, f := range RequiredFields {
		if !have[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// Columns returns the union of the records' columns in display order.
func Columns(records []models.CatalogRecord) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		for c := range r {
			seen[c] = true
		}
	}
	return orderColumns(seen)
}

var preferredOrder = []string{
	models.FieldBrand,
	models.FieldModel,
	models.FieldYear,
	models.FieldCategory,
	models.FieldDisplacement,
	models.FieldCylinder,
	models.FieldSeatHeight,
	models.FieldMSRP,
}

// orderColumns puts the well-known fields first and the rest in name order.
// Used for sources without a natural column order.
func orderColumns(seen map[string]bool) []string {
	out := make([]string, 0, len(seen))
	for _, f := range preferredOrder {
		if seen[f] {
			out = append(out, f)
		}
	}
	rest := make([]string, 0, len(seen))
	for c := range seen {
		if !contains(preferredOrder, c) {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
