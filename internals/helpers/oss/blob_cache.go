package helper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"rumble_backend/internals/metrics"
)

// CachedBlobStore reads through redis. Objects are addressed by label and
// etag so a cached entry never goes stale. Cache failures never fail a read.
type CachedBlobStore struct {
	Inner   BlobStore
	Redis   *redis.Client
	TTL     time.Duration
	Log     *logrus.Entry
	Metrics *metrics.Metrics
}

func NewCachedBlobStore(inner BlobStore, rdb *redis.Client, ttl time.Duration, log *logrus.Entry, m *metrics.Metrics) *CachedBlobStore {
	return &CachedBlobStore{Inner: inner, Redis: rdb, TTL: ttl, Log: log, Metrics: m}
}

func cacheKey(label, etag string) string {
	return fmt.Sprintf("blob:%s:%s", label, etag)
}

func (c *CachedBlobStore) Get(ctx context.Context, label, etag string) ([]byte, error) {
	key := cacheKey(label, etag)

	data, err := c.Redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c.Metrics.BlobCacheResult("hit")
		return data, nil
	case errors.Is(err, redis.Nil):
		c.Metrics.BlobCacheResult("miss")
	default:
		c.Metrics.BlobCacheResult("error")
		c.Log.WithError(err).WithField("key", key).Warn("blob cache read failed")
	}

	data, err = c.Inner.Get(ctx, label, etag)
	if err != nil {
		return nil, err
	}
	if err := c.Redis.Set(ctx, key, data, c.TTL).Err(); err != nil {
		c.Log.WithError(err).WithField("key", key).Warn("blob cache write failed")
	}
	return data, nil
}

func (c *CachedBlobStore) Put(ctx context.Context, label string, data []byte, contentType string) (string, error) {
	return c.Inner.Put(ctx, label, data, contentType)
}

func (c *CachedBlobStore) Remove(ctx context.Context, label string) error {
	return c.Inner.Remove(ctx, label)
}
