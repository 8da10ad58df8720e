package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionnaire_UnmarshalPositional(t *testing.T) {
	raw := `["Beginner", {"min":"300","max":500}, ["Cruiser", " Sport ", "Cruiser"],
		{"min":"5000","max":"8000"}, "No", "Asia", "Honda", "170", 75]`

	var q Questionnaire
	require.NoError(t, json.Unmarshal([]byte(raw), &q))

	assert.Equal(t, ExperienceBeginner, q.Experience)
	assert.Equal(t, Range{Min: "300", Max: "500"}, q.Displacement)
	assert.Equal(t, []string{"Cruiser", "Sport"}, q.Categories)
	assert.Equal(t, Range{Min: "5000", Max: "8000"}, q.Budget)
	assert.Equal(t, UsedNo, q.AcceptUsed)
	assert.Equal(t, RegionAsia, q.Region)
	assert.Equal(t, []string{"Honda"}, q.Brands)
	assert.Equal(t, "170", q.HeightCM)
	assert.Equal(t, "75", q.WeightKG)
}

func TestQuestionnaire_UnmarshalNamed(t *testing.T) {
	raw := `{"experience":"Advanced","region":"Europe","brands":["Ducati"],"weightKg":"90"}`

	var q Questionnaire
	require.NoError(t, json.Unmarshal([]byte(raw), &q))

	assert.Equal(t, ExperienceAdvanced, q.Experience)
	assert.Equal(t, RegionEurope, q.Region)
	assert.Equal(t, []string{"Ducati"}, q.Brands)
	assert.Equal(t, "90", q.WeightKG)
	assert.Empty(t, q.HeightCM)
}

func TestQuestionnaire_BlankSlots(t *testing.T) {
	raw := `["", null, [], {"min":"","max":""}, "", "", null, "", null]`

	var q Questionnaire
	require.NoError(t, json.Unmarshal([]byte(raw), &q))

	assert.Equal(t, ExperienceUnset, q.Experience)
	assert.Equal(t, Range{}, q.Displacement)
	assert.NotNil(t, q.Categories)
	assert.Empty(t, q.Categories)
	assert.NotNil(t, q.Brands)
	assert.Equal(t, RegionUnset, q.Region)
}

func TestQuestionnaire_UnknownValuesAreNotShapeErrors(t *testing.T) {
	raw := `["Expert", {}, ["Hovercraft"], {}, "Maybe", "Atlantis", [], "tall", "heavy"]`

	var q Questionnaire
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	assert.Equal(t, Region("Atlantis"), q.Region)
	assert.False(t, q.Region.IsValid())
	assert.Equal(t, "tall", q.HeightCM)
}

func TestQuestionnaire_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "too few slots", raw: `["Beginner", {}, [], {}, "No", "Asia", [], "170"]`},
		{name: "too many slots", raw: `["", {}, [], {}, "", "", [], "", "", ""]`},
		{name: "experience as number", raw: `[1, {}, [], {}, "", "", [], "", ""]`},
		{name: "range as string", raw: `["", "300-500", [], {}, "", "", [], "", ""]`},
		{name: "range bound as bool", raw: `["", {"min":true}, [], {}, "", "", [], "", ""]`},
		{name: "categories as object", raw: `["", {}, {"a":1}, {}, "", "", [], "", ""]`},
		{name: "brands with numbers", raw: `["", {}, [], {}, "", "", [1,2], "", ""]`},
		{name: "height as list", raw: `["", {}, [], {}, "", "", [], ["170"], ""]`},
		{name: "not json array or object", raw: `"Beginner"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Questionnaire
			err := json.Unmarshal([]byte(tt.raw), &q)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAnswerShape)
		})
	}
}

func TestFilterCriteria_Inverted(t *testing.T) {
	c := DefaultCriteria()
	assert.False(t, c.Inverted())

	c.MinCC, c.MaxCC = 600, 500
	assert.True(t, c.Inverted())

	c = DefaultCriteria()
	c.MinPrice = c.MaxPrice + 1
	assert.True(t, c.Inverted())
}

func TestCatalogRecord_Get(t *testing.T) {
	var empty CatalogRecord
	assert.Equal(t, "", empty.Get(FieldBrand))

	r := CatalogRecord{FieldBrand: "Honda"}
	assert.Equal(t, "Honda", r.Get(FieldBrand))
	assert.Equal(t, "", r.Get(FieldModel))
}

func TestQuestionnaire_UnmarshalNamedLooseKinds(t *testing.T) {
	raw := `{"categories":"Sport","heightCm":182,"budget":{"min":4000},"acceptUsed":null}`

	var q Questionnaire
	require.NoError(t, json.Unmarshal([]byte(raw), &q))

	assert.Equal(t, []string{"Sport"}, q.Categories)
	assert.Equal(t, "182", q.HeightCM)
	assert.Equal(t, Range{Min: "4000"}, q.Budget)
	assert.Equal(t, UsedUnset, q.AcceptUsed)
	assert.Equal(t, []string{}, q.Brands)

	err := json.Unmarshal([]byte(`{"experience":3}`), &q)
	assert.ErrorIs(t, err, ErrInvalidAnswerShape)
}
