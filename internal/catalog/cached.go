package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "bike-recommender/internal/common/errors"
	"bike-recommender/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "catalog:snapshot:"

// CachedSource keeps the last snapshot of another source in Redis so that
// worker replicas do not all hit the backend. Redis failures never fail a
// load; the inner source is used instead.
type CachedSource struct {
	inner  Source
	rdb    redis.Cmdable
	ttl    time.Duration
	key    string
	logger logger.Logger
}

func NewCachedSource(inner Source, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		inner:  inner,
		rdb:    rdb,
		ttl:    ttl,
		key:    cacheKeyPrefix + inner.Name(),
		logger: log.WithFields(map[string]interface{}{"catalogSource": inner.Name()}),
	}
}

func (c *CachedSource) Name() string { return c.inner.Name() }

func (c *CachedSource) Load(ctx context.Context) (*Snapshot, error) {
	if snap, ok := c.fromCache(ctx); ok {
		return snap, nil
	}

	snap, err := c.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, snap)
	return snap, nil
}

// Invalidate drops the cached snapshot so the next Load reads the backend.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, c.key).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	return nil
}

func (c *CachedSource) fromCache(ctx context.Context) (*Snapshot, bool) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("catalog cache read failed", map[string]interface{}{
			"error": apperrors.NewCacheUnavailableError(err),
		})
		return nil, false
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.logger.Warn("discarding unreadable cached catalog", map[string]interface{}{
			"error": err,
		})
		return nil, false
	}
	snap.FromCache = true
	return &snap, true
}

func (c *CachedSource) store(ctx context.Context, snap *Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("catalog snapshot not cacheable", map[string]interface{}{"error": err})
		return
	}
	if err := c.rdb.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", map[string]interface{}{
			"error": apperrors.NewCacheUnavailableError(err),
		})
		return
	}
	c.logger.Debug("catalog snapshot cached", map[string]interface{}{
		"records": snap.Len(),
		"ttl":     c.ttl.String(),
	})
}
