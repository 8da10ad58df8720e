package filtercatalog

import (
	"encoding/json"

	"bike-recommender/internal/models"
)

// Input takes the criteria exactly as build-criteria produced them.
type Input struct {
	Criteria   json.RawMessage `json:"criteria"`
	MaxResults int             `json:"maxResults,omitempty"`
}

// Output always carries a non-nil Matches list; an empty list is a
// completed search with no bikes, not a failure.
type Output struct {
	RecommendationID string                 `json:"recommendationId"`
	Matches          []models.CatalogRecord `json:"matches"`
	Columns          []string               `json:"columns"`
	Summary          models.MatchSummary    `json:"summary"`
	Truncated        bool                   `json:"truncated"`
}
