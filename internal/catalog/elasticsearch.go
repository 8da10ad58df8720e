package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "bike-recommender/internal/common/errors"
	"bike-recommender/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const (
	defaultPageSize = 500
	scrollKeepAlive = time.Minute
)

// ElasticsearchSource scrolls through every document of a catalog index.
// Document fields are named after the CSV headers; non-string values are
// rendered as their JSON text.
type ElasticsearchSource struct {
	client   *elasticsearch.Client
	index    string
	minYear  int
	pageSize int
}

func NewElasticsearchSource(client *elasticsearch.Client, index string, minYear int) *ElasticsearchSource {
	return &ElasticsearchSource{client: client, index: index, minYear: minYear, pageSize: defaultPageSize}
}

func (s *ElasticsearchSource) Name() string { return "elasticsearch" }

type scrollPage struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSource) Load(ctx context.Context) (*Snapshot, error) {
	query := `{"query":{"match_all":{}},"sort":["_doc"]}`
	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(strings.NewReader(query)),
		s.client.Search.WithSize(s.pageSize),
		s.client.Search.WithScroll(scrollKeepAlive),
	)
	if err != nil {
		return nil, s.classify(ctx, err)
	}
	page, err := s.decode(res.StatusCode, res.IsError(), res.String, res.Body)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var records []models.CatalogRecord
	scrollID := page.ScrollID
	defer func() { s.clearScroll(scrollID) }()

	for len(page.Hits.Hits) > 0 {
		for _, hit := range page.Hits.Hits {
			record := make(models.CatalogRecord, len(hit.Source))
			for k, v := range hit.Source {
				record[k] = cellString(v)
				seen[k] = true
			}
			records = append(records, record)
		}
		if page.ScrollID == "" {
			break
		}
		scrollID = page.ScrollID

		res, err := s.client.Scroll(
			s.client.Scroll.WithContext(ctx),
			s.client.Scroll.WithScrollID(scrollID),
			s.client.Scroll.WithScroll(scrollKeepAlive),
		)
		if err != nil {
			return nil, s.classify(ctx, err)
		}
		if page, err = s.decode(res.StatusCode, res.IsError(), res.String, res.Body); err != nil {
			return nil, err
		}
	}

	columns := orderColumns(seen)
	if len(records) > 0 {
		if missing := missingFields(columns); len(missing) > 0 {
			return nil, apperrors.NewCatalogLoadFailedError(s.Name(),
				fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", ")))
		}
	}

	return &Snapshot{
		Source:   s.Name(),
		Columns:  columns,
		Records:  filterByYear(records, s.minYear),
		LoadedAt: time.Now().UTC(),
	}, nil
}

func (s *ElasticsearchSource) decode(status int, isError bool, describe func() string, body io.ReadCloser) (*scrollPage, error) {
	defer body.Close()

	if isError {
		err := fmt.Errorf("search failed: %s", describe())
		if status == http.StatusNotFound {
			return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err).
				WithMetadata("index", s.index)
		}
		return nil, apperrors.NewCatalogQueryFailedError(s.Name(), err)
	}

	dec := json.NewDecoder(body)
	dec.UseNumber()
	var page scrollPage
	if err := dec.Decode(&page); err != nil {
		return nil, apperrors.NewCatalogQueryFailedError(s.Name(), fmt.Errorf("decode response: %w", err))
	}
	return &page, nil
}

func (s *ElasticsearchSource) clearScroll(scrollID string) {
	if scrollID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := s.client.ClearScroll(
		s.client.ClearScroll.WithContext(ctx),
		s.client.ClearScroll.WithScrollID(scrollID),
	)
	if err == nil {
		res.Body.Close()
	}
}

func (s *ElasticsearchSource) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewCatalogTimeoutError(s.Name(), err)
	}
	return apperrors.NewCatalogUnavailableError(s.Name(), err)
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(val); err != nil {
			return fmt.Sprint(val)
		}
		return strings.TrimSpace(buf.String())
	}
}
