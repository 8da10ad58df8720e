package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "bike-recommender/internal/common/errors"
	"bike-recommender/internal/models"

	"github.com/lib/pq"
)

// PostgresSource reads every row of a catalog table. Columns are named
// after the CSV headers, so "Displacement (CC)" is a quoted identifier.
type PostgresSource struct {
	db      *sql.DB
	table   string
	minYear int
}

func NewPostgresSource(db *sql.DB, table string, minYear int) *PostgresSource {
	return &PostgresSource{db: db, table: table, minYear: minYear}
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) query() string {
	parts := strings.Split(s.table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return fmt.Sprintf("SELECT * FROM %s", strings.Join(parts, "."))
}

func (s *PostgresSource) Load(ctx context.Context) (*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, s.query())
	if err != nil {
		return nil, s.classify(ctx, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.NewCatalogQueryFailedError(s.Name(), err)
	}
	if missing := missingFields(columns); len(missing) > 0 {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(),
			fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", ")))
	}

	var records []models.CatalogRecord
	cells := make([]sql.NullString, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.NewCatalogQueryFailedError(s.Name(), err)
		}
		record := make(models.CatalogRecord, len(columns))
		for i, col := range columns {
			record[col] = cells[i].String
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(ctx, err)
	}

	return &Snapshot{
		Source:   s.Name(),
		Columns:  columns,
		Records:  filterByYear(records, s.minYear),
		LoadedAt: time.Now().UTC(),
	}, nil
}

// classify separates timeouts and missing tables from generic failures.
func (s *PostgresSource) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewCatalogTimeoutError(s.Name(), err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 42P01 undefined_table, 42703 undefined_column
		if pqErr.Code == "42P01" || pqErr.Code == "42703" {
			return apperrors.NewCatalogLoadFailedError(s.Name(), err)
		}
		return apperrors.NewCatalogQueryFailedError(s.Name(), err)
	}
	return apperrors.NewCatalogUnavailableError(s.Name(), err)
}
