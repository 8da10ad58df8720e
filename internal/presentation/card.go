package presentation

import (
	"strings"
	"unicode/utf8"

	"bike-recommender/internal/catalog"
	"bike-recommender/internal/models"
)

// DetailRow is one field of a bike card.
type DetailRow struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Card is the display form of one matched bike.
type Card struct {
	Title   string      `json:"title"`
	Details []DetailRow `json:"details"`
}

// Title renders "Brand Model (Year)". The year part is left out when the
// record has none.
func Title(record models.CatalogRecord) string {
	parts := make([]string, 0, 3)
	if b := strings.TrimSpace(record.Get(models.FieldBrand)); b != "" {
		parts = append(parts, FormatBrand(b))
	}
	if m := strings.TrimSpace(record.Get(models.FieldModel)); m != "" {
		parts = append(parts, FormatModel(m))
	}
	if y := strings.TrimSpace(record.Get(models.FieldYear)); y != "" {
		parts = append(parts, "("+y+")")
	}
	return strings.Join(parts, " ")
}

// DetailRows lists the record's fields in column order. Empty values and
// values of MaxValueLength characters or more are skipped. When columns is
// empty the record's own keys are used.
func DetailRows(record models.CatalogRecord, columns []string) []DetailRow {
	if len(columns) == 0 {
		columns = catalog.Columns([]models.CatalogRecord{record})
	}

	rows := make([]DetailRow, 0, len(columns))
	for _, col := range columns {
		value, ok := record[col]
		if !ok || value == "" || utf8.RuneCountInString(value) >= MaxValueLength {
			continue
		}
		switch strings.ToLower(col) {
		case "brand":
			value = FormatBrand(value)
		case "model":
			value = FormatModel(value)
		}
		rows = append(rows, DetailRow{Field: col, Value: value})
	}
	return rows
}

// Cards builds one card per record, keeping record order.
func Cards(records []models.CatalogRecord, columns []string) []Card {
	cards := make([]Card, 0, len(records))
	for _, r := range records {
		cards = append(cards, Card{
			Title:   Title(r),
			Details: DetailRows(r, columns),
		})
	}
	return cards
}
