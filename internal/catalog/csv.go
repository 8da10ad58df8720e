package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	apperrors "bike-recommender/internal/common/errors"
	"bike-recommender/internal/models"
)

var ErrMissingColumns = errors.New("catalog is missing required columns")

// CSVSource reads the catalog from a headered CSV file on every Load.
type CSVSource struct {
	Path    string
	MinYear int
}

func NewCSVSource(path string, minYear int) *CSVSource {
	return &CSVSource{Path: path, MinYear: minYear}
}

func (s *CSVSource) Name() string { return "csv" }

func (s *CSVSource) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewCatalogTimeoutError(s.Name(), err)
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, apperrors.NewCatalogUnavailableError(s.Name(), err)
	}
	defer f.Close()

	snap, err := ReadCSV(f, s.MinYear)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}
	snap.Source = s.Name()
	return snap, nil
}

// ReadCSV parses a headered catalog. Header names are trimmed, blank lines
// skipped, short rows padded with empty cells and extra cells dropped.
// Records older than minYear are removed.
func ReadCSV(r io.Reader, minYear int) (*Snapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	if missing := missingFields(columns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var records []models.CatalogRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blankRow(row) {
			continue
		}

		record := make(models.CatalogRecord, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(row) {
				record[col] = row[i]
			} else {
				record[col] = ""
			}
		}
		records = append(records, record)
	}

	return &Snapshot{
		Columns:  nonEmpty(columns),
		Records:  filterByYear(records, minYear),
		LoadedAt: time.Now().UTC(),
	}, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
