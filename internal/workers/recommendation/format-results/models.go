package formatresults

import (
	"bike-recommender/internal/models"
	"bike-recommender/internal/presentation"
)

// Input is the filter-catalog output. A missing matches variable means the
// search never ran; an empty list means it found nothing.
type Input struct {
	RecommendationID string                 `json:"recommendationId"`
	Matches          []models.CatalogRecord `json:"matches"`
	Columns          []string               `json:"columns"`
}

type Output struct {
	RecommendationID string              `json:"recommendationId"`
	Cards            []presentation.Card `json:"cards"`
	CardCount        int                 `json:"cardCount"`
	NoMatches        bool                `json:"noMatches"`
}
