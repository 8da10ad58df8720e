package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"bike-recommender/internal/common/config"
	"bike-recommender/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
)

// Backends are the connections a configured source may need. Only the one
// matching catalog.source has to be set; Redis is optional.
type Backends struct {
	Postgres      *sql.DB
	Elasticsearch *elasticsearch.Client
	Redis         redis.Cmdable
}

// New builds the configured source, wrapped in a CachedSource when a cache
// TTL and a Redis client are both present.
func New(cfg config.CatalogConfig, b Backends, log logger.Logger) (Source, error) {
	minYear := cfg.MinYear
	if minYear == 0 {
		minYear = DefaultMinYear
	}

	var src Source
	switch cfg.Source {
	case config.SourceCSV, "":
		src = NewCSVSource(cfg.CSVPath, minYear)
	case config.SourcePostgres:
		if b.Postgres == nil {
			return nil, fmt.Errorf("catalog source %q needs a postgres connection", cfg.Source)
		}
		src = NewPostgresSource(b.Postgres, cfg.Table, minYear)
	case config.SourceElasticsearch:
		if b.Elasticsearch == nil {
			return nil, fmt.Errorf("catalog source %q needs an elasticsearch client", cfg.Source)
		}
		src = NewElasticsearchSource(b.Elasticsearch, cfg.Index, minYear)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}

	if ttl := cfg.CacheTTLDuration(); ttl > 0 && b.Redis != nil {
		src = NewCachedSource(src, b.Redis, ttl, log)
	}
	return src, nil
}

// Memo holds one snapshot in process and reloads it once it is older than
// maxAge. A zero maxAge keeps the first successful load forever. Failed
// loads are not remembered.
type Memo struct {
	source Source
	maxAge time.Duration
	now    func() time.Time

	mu       sync.Mutex
	snap     *Snapshot
	loadedAt time.Time
}

func NewMemo(source Source, maxAge time.Duration) *Memo {
	return &Memo{source: source, maxAge: maxAge, now: time.Now}
}

func (m *Memo) Name() string { return m.source.Name() }

// Load returns the held snapshot or loads a fresh one. Concurrent callers
// wait for a single load. A held snapshot comes back as a copy marked
// FromMemo; the load that fetched it keeps its own FromCache flag.
func (m *Memo) Load(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap != nil && (m.maxAge <= 0 || m.now().Sub(m.loadedAt) < m.maxAge) {
		served := *m.snap
		served.FromCache = false
		served.FromMemo = true
		return &served, nil
	}

	snap, err := m.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	m.snap = snap
	m.loadedAt = m.now()
	return snap, nil
}

// Reset forgets the held snapshot.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.snap = nil
	m.mu.Unlock()
}
