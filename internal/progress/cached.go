package progress

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	aggregateCacheTTL = 5 * time.Minute
	cacheKeyPrefix    = "progress:agg:"
)

// CachedStore wraps a Store with a read-through Redis cache of the aggregate
// report. Writes invalidate the cached report; a cache outage degrades to
// plain Store behavior.
type CachedStore struct {
	inner  Store
	client *redis.Client
}

// NewCachedStore layers caching over inner.
func NewCachedStore(inner Store, client *redis.Client) *CachedStore {
	return &CachedStore{inner: inner, client: client}
}

func (s *CachedStore) Upsert(ctx context.Context, rec Record) error {
	if err := s.inner.Upsert(ctx, rec); err != nil {
		return err
	}
	s.invalidate(ctx, rec.UUID)
	return nil
}

func (s *CachedStore) RecordAttempt(ctx context.Context, att Attempt) error {
	if err := s.inner.RecordAttempt(ctx, att); err != nil {
		return err
	}
	s.invalidate(ctx, att.UUID)
	return nil
}

func (s *CachedStore) Reset(ctx context.Context, uuid, theme string) error {
	if err := s.inner.Reset(ctx, uuid, theme); err != nil {
		return err
	}
	s.invalidate(ctx, uuid)
	return nil
}

func (s *CachedStore) Aggregates(ctx context.Context, uuid string) (*Report, error) {
	key := cacheKeyPrefix + uuid
	if data, err := s.client.Get(ctx, key).Bytes(); err == nil {
		var report Report
		if err := json.Unmarshal(data, &report); err == nil {
			return &report, nil
		}
	}

	report, err := s.inner.Aggregates(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(report); err == nil {
		if err := s.client.Set(ctx, key, data, aggregateCacheTTL).Err(); err != nil {
			slog.Warn("progress cache write failed", "uuid", uuid, "error", err)
		}
	}
	return report, nil
}

func (s *CachedStore) invalidate(ctx context.Context, uuid string) {
	if err := s.client.Del(ctx, cacheKeyPrefix+uuid).Err(); err != nil {
		slog.Warn("progress cache invalidation failed", "uuid", uuid, "error", err)
	}
}
