package buildcriteria

import (
	"encoding/json"

	"bike-recommender/internal/models"
)

// Input carries the questionnaire exactly as the quiz posted it, either the
// 9-slot array or the named object.
type Input struct {
	Answers json.RawMessage `json:"answers"`
}

type Output struct {
	Criteria models.FilterCriteria `json:"criteria"`
	Inverted bool                  `json:"criteriaInverted"`
}
