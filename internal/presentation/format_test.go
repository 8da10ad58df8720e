package presentation

import (
	"strings"
	"testing"

	"bike-recommender/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFormatBrand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"honda", "Honda"},
		{"ROYAL ENFIELD", "Royal enfield"},
		{"ktm", "Ktm"},
		{"", ""},
		{"émile", "Émile"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBrand(tt.in))
		})
	}
}

func TestFormatModel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"long word title-cased", "meteor 350", "Meteor 350"},
		{"short code upper-cased", "mt-07", "MT-07"},
		{"three letter code title-cased", "ninja zx-4r", "Ninja Zx-4r"},
		{"leading i kept", "is 300", "iS 300"},
		{"second letter i", "xi", "Xi"},
		{"long i word unchanged", "interceptor 650", "interceptor 650"},
		{"mixed case long word", "CBR650R", "Cbr650r"},
		{"digits only", "1290", "1290"},
		{"double space kept", "r1  m", "R1  M"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatModel(tt.in))
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Royal enfield Meteor 350 (2021)", Title(models.CatalogRecord{
		models.FieldBrand: "royal enfield",
		models.FieldModel: "meteor 350",
		models.FieldYear:  "2021",
	}))
	assert.Equal(t, "Honda CB 500", Title(models.CatalogRecord{
		models.FieldBrand: "honda",
		models.FieldModel: "cb 500",
	}))
	assert.Equal(t, "", Title(models.CatalogRecord{}))
}

func TestDetailRows(t *testing.T) {
	record := models.CatalogRecord{
		models.FieldBrand:        "YAMAHA",
		models.FieldModel:        "mt-07",
		models.FieldYear:         "2022",
		models.FieldDisplacement: "689",
		"Dry Weight (kg)":        "",
		"Comments":               strings.Repeat("x", MaxValueLength),
		"Fuel Capacity (L)":      strings.Repeat("9", MaxValueLength-1),
	}
	columns := []string{
		models.FieldBrand, models.FieldModel, models.FieldYear, models.FieldDisplacement,
		"Dry Weight (kg)", "Comments", "Fuel Capacity (L)", "Not In Record",
	}

	rows := DetailRows(record, columns)

	assert.Equal(t, []DetailRow{
		{Field: models.FieldBrand, Value: "Yamaha"},
		{Field: models.FieldModel, Value: "MT-07"},
		{Field: models.FieldYear, Value: "2022"},
		{Field: models.FieldDisplacement, Value: "689"},
		{Field: "Fuel Capacity (L)", Value: strings.Repeat("9", MaxValueLength-1)},
	}, rows)
}

func TestDetailRows_DefaultColumns(t *testing.T) {
	rows := DetailRows(models.CatalogRecord{
		"Zeta":            "z",
		models.FieldModel: "mt-07",
		models.FieldBrand: "yamaha",
		"Alpha":           "a",
	}, nil)

	fields := make([]string, 0, len(rows))
	for _, r := range rows {
		fields = append(fields, r.Field)
	}
	assert.Equal(t, []string{models.FieldBrand, models.FieldModel, "Alpha", "Zeta"}, fields)
}

func TestCards(t *testing.T) {
	records := []models.CatalogRecord{
		{models.FieldBrand: "honda", models.FieldModel: "cb500f", models.FieldYear: "2020"},
		{models.FieldBrand: "honda", models.FieldModel: "cb500f", models.FieldYear: "2020"},
	}
	cards := Cards(records, []string{models.FieldBrand, models.FieldModel, models.FieldYear})

	assert.Len(t, cards, 2)
	assert.Equal(t, "Honda Cb500f (2020)", cards[0].Title)
	assert.Equal(t, cards[0], cards[1])

	assert.NotNil(t, Cards(nil, nil))
	assert.Empty(t, Cards(nil, nil))
}
