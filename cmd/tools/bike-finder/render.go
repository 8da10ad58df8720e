package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"bike-recommender/internal/catalog"
	"bike-recommender/internal/models"
	"bike-recommender/internal/presentation"
)

// tableColumns are the catalog fields shown in the summary table.
var tableColumns = []string{
	models.FieldCategory,
	models.FieldDisplacement,
	models.FieldCylinder,
	models.FieldSeatHeight,
	models.FieldMSRP,
}

type jsonResult struct {
	Criteria models.FilterCriteria `json:"criteria"`
	Scanned  int                   `json:"scanned"`
	Matched  int                   `json:"matched"`
	Cards    []presentation.Card   `json:"cards"`
}

func render(w io.Writer, format string, criteria models.FilterCriteria, snap *catalog.Snapshot, matches []models.CatalogRecord, total int) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonResult{
			Criteria: criteria,
			Scanned:  snap.Len(),
			Matched:  total,
			Cards:    presentation.Cards(matches, snap.Columns),
		})
	case "cards":
		renderCriteria(w, criteria)
		renderCards(w, matches, snap.Columns)
	case "table", "":
		renderCriteria(w, criteria)
		renderTable(w, matches)
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	_, _ = fmt.Fprintf(w, "(%d of %d bikes match, %d shown)\n", total, snap.Len(), len(matches))
	return nil
}

func renderCriteria(w io.Writer, c models.FilterCriteria) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Criteria")

	t.AppendRow(table.Row{"Displacement (cc)", fmt.Sprintf("%d - %d", c.MinCC, c.MaxCC)})
	t.AppendRow(table.Row{"Price (USD)", fmt.Sprintf("%.0f - %.0f", c.MinPrice, c.MaxPrice)})
	t.AppendRow(table.Row{"Max seat height (mm)", fmt.Sprintf("%.0f", c.MaxSeatHeight)})
	t.AppendRow(table.Row{"Excluded cylinders", listOrDash(c.BannedCylinderTokens)})
	t.AppendRow(table.Row{"Categories", listOrDash(c.InterestedCategories)})
	t.AppendRow(table.Row{"Brands", fmt.Sprintf("%d allowed", len(c.AllowedBrands))})
	if c.Inverted() {
		t.AppendFooter(table.Row{"", "range inverted: nothing can match"})
	}
	t.Render()
}

func renderTable(w io.Writer, matches []models.CatalogRecord) {
	if len(matches) == 0 {
		_, _ = fmt.Fprintln(w, "No bikes match these answers.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"#", "Bike"}
	for _, col := range tableColumns {
		header = append(header, col)
	}
	t.AppendHeader(header)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})

	for i, m := range matches {
		row := table.Row{i + 1, presentation.Title(m)}
		for _, col := range tableColumns {
			row = append(row, m.Get(col))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func renderCards(w io.Writer, matches []models.CatalogRecord, columns []string) {
	if len(matches) == 0 {
		_, _ = fmt.Fprintln(w, "No bikes match these answers.")
		return
	}
	for i, card := range presentation.Cards(matches, columns) {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleRounded)
		t.SetTitle(fmt.Sprintf("%d. %s", i+1, card.Title))
		for _, d := range card.Details {
			t.AppendRow(table.Row{d.Field, d.Value})
		}
		t.Render()
	}
}

func listOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
