package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CachedSummaries fronts the summary computation with a Redis cache.
// Concurrent misses for the same key collapse into one computation via
// singleflight. Redis being down degrades to computing every request.
type CachedSummaries struct {
	logger  *slog.Logger
	service *Service
	redis   *redis.Client
	ttl     time.Duration
	group   singleflight.Group
}

// NewCachedSummaries constructs CachedSummaries.
func NewCachedSummaries(logger *slog.Logger, service *Service, rdb *redis.Client, ttl time.Duration) *CachedSummaries {
	return &CachedSummaries{logger: logger, service: service, redis: rdb, ttl: ttl}
}

func summaryKey(userID int64, from, to time.Time) string {
	return fmt.Sprintf("reports:summary:%d:%d:%d", userID, from.Unix(), to.Unix())
}

// Summary returns the cached dashboard or computes and stores it.
func (c *CachedSummaries) Summary(ctx context.Context, userID int64, from, to time.Time) (*Summary, error) {
	key := summaryKey(userID, from, to)

	if raw, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var cached Summary
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		c.logger.Warn("discarding undecodable cached summary", slog.String("key", key))
	} else if err != redis.Nil {
		c.logger.Warn("summary cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		summary, err := c.service.Summary(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(summary); err == nil {
			if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.Warn("summary cache write failed", slog.String("key", key), slog.Any("error", err))
			}
		}
		return summary, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Summary), nil
}

// Invalidate drops every cached summary for the user. Called after writes
// that change the aggregates.
func (c *CachedSummaries) Invalidate(ctx context.Context, userID int64) {
	pattern := fmt.Sprintf("reports:summary:%d:*", userID)
	iter := c.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("summary cache invalidation failed", slog.String("key", iter.Val()), slog.Any("error", err))
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("summary cache scan failed", slog.String("pattern", pattern), slog.Any("error", err))
	}
}
