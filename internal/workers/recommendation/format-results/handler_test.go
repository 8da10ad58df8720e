package formatresults

import (
	"context"
	"encoding/json"
	"testing"

	apperrors "bike-recommender/internal/common/errors"
	"bike-recommender/internal/common/logger"
	"bike-recommender/internal/models"
	"bike-recommender/internal/presentation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), nil, logger.NewZapAdapter(zaptest.NewLogger(t)))
}

func TestHandler_Execute(t *testing.T) {
	input := &Input{
		RecommendationID: "3f1c7a52-0c0e-4d7c-9d0b-4a7e1e7f2b11",
		Matches: []models.CatalogRecord{
			{
				models.FieldBrand:        "ROYAL ENFIELD",
				models.FieldModel:        "meteor 350",
				models.FieldYear:         "2021",
				models.FieldDisplacement: "349.0",
				"Fuel Control":           "",
			},
		},
		Columns: []string{models.FieldBrand, models.FieldModel, models.FieldYear, models.FieldDisplacement, "Fuel Control"},
	}

	out, err := createTestHandler(t).Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, input.RecommendationID, out.RecommendationID)
	assert.Equal(t, 1, out.CardCount)
	assert.False(t, out.NoMatches)
	assert.Equal(t, presentation.Card{
		Title: "Royal enfield Meteor 350 (2021)",
		Details: []presentation.DetailRow{
			{Field: models.FieldBrand, Value: "Royal enfield"},
			{Field: models.FieldModel, Value: "Meteor 350"},
			{Field: models.FieldYear, Value: "2021"},
			{Field: models.FieldDisplacement, Value: "349.0"},
		},
	}, out.Cards[0])
}

func TestHandler_Execute_NoMatches(t *testing.T) {
	var input Input
	require.NoError(t, json.Unmarshal([]byte(`{"matches":[],"columns":["Brand"]}`), &input))

	out, err := createTestHandler(t).Execute(context.Background(), &input)
	require.NoError(t, err)
	assert.True(t, out.NoMatches)
	assert.Equal(t, 0, out.CardCount)
	assert.NotNil(t, out.Cards)
}

func TestHandler_Execute_NotComputed(t *testing.T) {
	var input Input
	require.NoError(t, json.Unmarshal([]byte(`{"columns":["Brand"]}`), &input))

	_, err := createTestHandler(t).Execute(context.Background(), &input)
	require.Error(t, err)

	std := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeInvalidResults, std.Code)
	assert.False(t, std.Retryable)
}
