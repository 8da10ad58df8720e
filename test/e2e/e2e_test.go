// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bike-recommender/internal/catalog"
	"bike-recommender/internal/common/camunda"
	"bike-recommender/internal/common/config"
	"bike-recommender/internal/common/database"
	"bike-recommender/internal/common/logger"
	"bike-recommender/internal/matching"

	bc "bike-recommender/internal/workers/recommendation/build-criteria"
	fc "bike-recommender/internal/workers/recommendation/filter-catalog"
	fr "bike-recommender/internal/workers/recommendation/format-results"
)

var testCatalog = filepath.Join("..", "..", "internal", "catalog", "testdata", "bikes.csv")

const cruiserAnswers = `["Beginner", {"min":"300","max":"500"}, ["Cruiser"], {"min":"4000","max":"8000"},
	"No", "Asia", [], "170", "75"]`

// pipeline runs the three recommendation workers in process order, passing
// variables between them as JSON the way the broker does.
type pipeline struct {
	build  *bc.Handler
	filter *fc.Handler
	format *fr.Handler
}

func newPipeline(t testing.TB, source catalog.Source, cacheEnabled bool) *pipeline {
	log := logger.NewTestLogger(t)
	return &pipeline{
		build: bc.NewHandler(&bc.Config{Timeout: 10 * time.Second}, nil, log),
		filter: fc.NewHandler(&fc.Config{
			Timeout:      30 * time.Second,
			MaxResults:   200,
			Policy:       matching.UnparsableReject,
			CacheEnabled: cacheEnabled,
		}, source, nil, log),
		format: fr.NewHandler(&fr.Config{Timeout: 10 * time.Second}, nil, log),
	}
}

func (p *pipeline) run(t testing.TB, answers string) (*fc.Output, *fr.Output) {
	ctx := context.Background()

	criteria, err := p.build.Execute(ctx, &bc.Input{Answers: json.RawMessage(answers)})
	require.NoError(t, err)

	var filterIn fc.Input
	relay(t, criteria, &filterIn)
	matches, err := p.filter.Execute(ctx, &filterIn)
	require.NoError(t, err)

	var formatIn fr.Input
	relay(t, matches, &formatIn)
	cards, err := p.format.Execute(ctx, &formatIn)
	require.NoError(t, err)

	return matches, cards
}

func relay(t testing.TB, from, to interface{}) {
	data, err := json.Marshal(from)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, to))
}

func TestPipeline_CSVCatalog(t *testing.T) {
	source := catalog.NewMemo(catalog.NewCSVSource(testCatalog, catalog.DefaultMinYear), time.Minute)
	p := newPipeline(t, source, false)

	t.Run("cruiser beginner", func(t *testing.T) {
		matches, cards := p.run(t, cruiserAnswers)

		assert.Equal(t, 4, matches.Summary.Scanned)
		assert.Equal(t, 1, matches.Summary.Matched)
		assert.Equal(t, matches.RecommendationID, cards.RecommendationID)
		require.Len(t, cards.Cards, 1)
		assert.Equal(t, "Royal enfield Meteor 350 (2021)", cards.Cards[0].Title)
		assert.False(t, cards.NoMatches)
	})

	t.Run("inverted range finds nothing", func(t *testing.T) {
		_, cards := p.run(t, `["", {"min":"900","max":"300"}, [], {}, "", "", [], "", ""]`)
		assert.True(t, cards.NoMatches)
		assert.NotNil(t, cards.Cards)
		assert.Empty(t, cards.Cards)
	})

	t.Run("named answers", func(t *testing.T) {
		_, cards := p.run(t, `{"experience":"Advanced","displacement":{"min":"900"},"region":"Asia"}`)
		require.Len(t, cards.Cards, 1)
		assert.Equal(t, "Kawasaki Ninja Zx-10r (2023)", cards.Cards[0].Title)
	})
}

// TestPipeline_LiveServices loads the catalog from PostgreSQL through the
// Redis cache. Set E2E_LIVE=1 with postgres, redis and zeebe on localhost.
func TestPipeline_LiveServices(t *testing.T) {
	if os.Getenv("E2E_LIVE") == "" {
		t.Skip("E2E_LIVE not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Camunda.BrokerAddress = "localhost:26500"

	zeebe, err := camunda.NewClient(&camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
	})
	require.NoError(t, err, "zeebe unreachable")
	defer zeebe.Close()
	assert.NoError(t, zeebe.HealthCheck(ctx))

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx), "postgres unreachable")

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx), "redis unreachable")

	const table = "e2e_motorcycles"
	seedCatalogTable(ctx, t, pg, table)

	catCfg := cfg.Catalog
	catCfg.Source = config.SourcePostgres
	catCfg.Table = table
	catCfg.CacheTTL = 60

	source, err := catalog.New(catCfg, catalog.Backends{
		Postgres: pg.DB,
		Redis:    rdb.Client,
	}, logger.NewZapAdapter(zap.NewNop()))
	require.NoError(t, err)

	cached, ok := source.(*catalog.CachedSource)
	require.True(t, ok, "cache ttl set, source should be cached")
	require.NoError(t, cached.Invalidate(ctx))

	p := newPipeline(t, source, true)
	for i := 0; i < 2; i++ {
		matches, cards := p.run(t, cruiserAnswers)
		assert.Equal(t, "postgres", matches.Summary.Source)
		assert.Equal(t, 1, matches.Summary.Matched)
		require.Len(t, cards.Cards, 1)
	}

	snap, err := source.Load(ctx)
	require.NoError(t, err)
	assert.True(t, snap.FromCache)
}

func seedCatalogTable(ctx context.Context, t *testing.T, pg *database.PostgresClient, table string) {
	t.Helper()

	f, err := os.Open(testCatalog)
	require.NoError(t, err)
	defer f.Close()

	snap, err := catalog.ReadCSV(f, 0)
	require.NoError(t, err)

	quoted := make([]string, len(snap.Columns))
	defs := make([]string, len(snap.Columns))
	params := make([]string, len(snap.Columns))
	for i, col := range snap.Columns {
		quoted[i] = pq.QuoteIdentifier(col)
		defs[i] = quoted[i] + " TEXT"
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	_, err = pg.DB.ExecContext(ctx, "DROP TABLE IF EXISTS "+pq.QuoteIdentifier(table))
	require.NoError(t, err)
	_, err = pg.DB.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", pq.QuoteIdentifier(table), strings.Join(defs, ", ")))
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pg.DB.Exec("DROP TABLE IF EXISTS " + pq.QuoteIdentifier(table))
	})

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(params, ", "))
	for _, rec := range snap.Records {
		args := make([]interface{}, len(snap.Columns))
		for i, col := range snap.Columns {
			args[i] = rec.Get(col)
		}
		_, err := pg.DB.ExecContext(ctx, insert, args...)
		require.NoError(t, err)
	}
}

func BenchmarkPipeline_CSVCatalog(b *testing.B) {
	source := catalog.NewMemo(catalog.NewCSVSource(testCatalog, catalog.DefaultMinYear), 0)
	p := newPipeline(b, source, false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.run(b, cruiserAnswers)
	}
}
