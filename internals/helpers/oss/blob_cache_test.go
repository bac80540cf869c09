package helper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rumble_backend/internals/helpers/apperr"
	"rumble_backend/internals/metrics"
)

func newCache(t *testing.T, inner BlobStore) (*CachedBlobStore, *miniredis.Miniredis, *metrics.Metrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	m := metrics.New(prometheus.NewRegistry())
	return NewCachedBlobStore(inner, rdb, time.Minute, logrus.NewEntry(logrus.New()), m), mr, m
}

func TestCachedBlobStore_ReadThrough(t *testing.T) {
	calls := 0
	inner := &MockBlobStore{
		GetFn: func(ctx context.Context, label, etag string) ([]byte, error) {
			calls++
			return []byte("page-bytes"), nil
		},
	}
	cache, mr, m := newCache(t, inner)
	ctx := context.Background()

	got, err := cache.Get(ctx, "u1/page.jpg", "ETAG1")
	require.NoError(t, err)
	assert.Equal(t, []byte("page-bytes"), got)
	assert.True(t, mr.Exists("blob:u1/page.jpg:ETAG1"))

	got, err = cache.Get(ctx, "u1/page.jpg", "ETAG1")
	require.NoError(t, err)
	assert.Equal(t, []byte("page-bytes"), got)
	assert.Equal(t, 1, calls)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlobCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlobCache.WithLabelValues("hit")))
}

func TestCachedBlobStore_RedisDownFallsBackToInner(t *testing.T) {
	inner := &MockBlobStore{
		GetFn: func(ctx context.Context, label, etag string) ([]byte, error) {
			return []byte("from-oss"), nil
		},
	}
	cache, mr, m := newCache(t, inner)
	mr.Close()

	got, err := cache.Get(context.Background(), "l", "e")
	require.NoError(t, err)
	assert.Equal(t, []byte("from-oss"), got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlobCache.WithLabelValues("error")))
}

func TestCachedBlobStore_InnerErrorNotCached(t *testing.T) {
	inner := &MockBlobStore{
		GetFn: func(ctx context.Context, label, etag string) ([]byte, error) {
			return nil, apperr.NotFound("artifact not found")
		},
	}
	cache, mr, _ := newCache(t, inner)

	_, err := cache.Get(context.Background(), "l", "e")
	assert.True(t, apperr.IsNotFound(err))
	assert.False(t, mr.Exists("blob:l:e"))
}

func TestMemoryBlobStore(t *testing.T) {
	s := NewMemoryBlobStore()
	ctx := context.Background()

	etag, err := s.Put(ctx, "a", []byte("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "5D41402ABC4B2A76B9719D911017C592", etag)

	got, err := s.Get(ctx, "a", etag)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	_, err = s.Get(ctx, "a", "stale")
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, s.Remove(ctx, "a"))
	_, err = s.Get(ctx, "a", etag)
	assert.True(t, apperr.IsNotFound(err))
}

func TestMockBlobStore_Unset(t *testing.T) {
	m := &MockBlobStore{}
	_, err := m.Get(context.Background(), "l", "e")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}
