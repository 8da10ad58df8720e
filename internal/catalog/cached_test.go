package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "bike-recommender/internal/common/errors"
	"bike-recommender/internal/common/logger"
	"bike-recommender/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	name  string
	snap  *Snapshot
	err   error
	calls int
}

func (s *countingSource) Name() string { return s.name }

func (s *countingSource) Load(context.Context) (*Snapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		Source:  "csv",
		Columns: []string{models.FieldBrand, models.FieldModel},
		Records: []models.CatalogRecord{
			{models.FieldBrand: "honda", models.FieldModel: "cb500f"},
			{models.FieldBrand: "yamaha", models.FieldModel: "mt-07"},
		},
		LoadedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestCachedSource_MissThenHit(t *testing.T) {
	mr, rdb := setupMiniredis(t)
	inner := &countingSource{name: "csv", snap: testSnapshot()}
	src := NewCachedSource(inner, rdb, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	first, err := src.Load(ctx)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, inner.calls)
	assert.True(t, mr.Exists("catalog:snapshot:csv"))

	second, err := src.Load(ctx)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, inner.calls, "hit must not touch the backend")
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Columns, second.Columns)
	assert.True(t, first.LoadedAt.Equal(second.LoadedAt))
}

func TestCachedSource_Expiry(t *testing.T) {
	mr, rdb := setupMiniredis(t)
	inner := &countingSource{name: "csv", snap: testSnapshot()}
	src := NewCachedSource(inner, rdb, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	_, err := src.Load(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	snap, err := src.Load(ctx)
	require.NoError(t, err)
	assert.False(t, snap.FromCache)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_Invalidate(t *testing.T) {
	mr, rdb := setupMiniredis(t)
	inner := &countingSource{name: "postgres", snap: testSnapshot()}
	src := NewCachedSource(inner, rdb, time.Hour, logger.NewTestLogger(t))
	ctx := context.Background()

	_, err := src.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, src.Invalidate(ctx))
	assert.False(t, mr.Exists("catalog:snapshot:postgres"))

	_, err = src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_UnreadableEntry(t *testing.T) {
	mr, rdb := setupMiniredis(t)
	require.NoError(t, mr.Set("catalog:snapshot:csv", "{broken"))

	inner := &countingSource{name: "csv", snap: testSnapshot()}
	snap, err := NewCachedSource(inner, rdb, time.Minute, logger.NewTestLogger(t)).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.FromCache)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedSource_RedisFailures(t *testing.T) {
	snap := testSnapshot()
	payload, err := json.Marshal(snap)
	require.NoError(t, err)
	key := "catalog:snapshot:csv"

	tests := []struct {
		name      string
		setup     func(mock redismock.ClientMock)
		innerErr  error
		wantErr   bool
		wantCalls int
	}{
		{
			name: "read failure falls back to backend",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(key).SetErr(errors.New("connection reset"))
				mock.ExpectSet(key, payload, time.Minute).SetVal("OK")
			},
			wantCalls: 1,
		},
		{
			name: "write failure still returns snapshot",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(key).RedisNil()
				mock.ExpectSet(key, payload, time.Minute).SetErr(errors.New("OOM command not allowed"))
			},
			wantCalls: 1,
		},
		{
			name: "backend failure propagates",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(key).RedisNil()
			},
			innerErr:  apperrors.NewCatalogUnavailableError("csv", errors.New("no such file")),
			wantErr:   true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdb, mock := redismock.NewClientMock()
			tt.setup(mock)

			inner := &countingSource{name: "csv", snap: snap, err: tt.innerErr}
			got, err := NewCachedSource(inner, rdb, time.Minute, logger.NewTestLogger(t)).Load(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrCodeCatalogUnavailable, apperrors.Normalize(err).Code)
			} else {
				require.NoError(t, err)
				assert.Equal(t, snap.Records, got.Records)
			}
			assert.Equal(t, tt.wantCalls, inner.calls)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCachedSource_InvalidateFailure(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectDel("catalog:snapshot:csv").SetErr(errors.New("connection refused"))

	src := NewCachedSource(&countingSource{name: "csv"}, rdb, time.Minute, logger.NewNoOpLogger())
	err := src.Invalidate(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCacheUnavailable, apperrors.Normalize(err).Code)
}
