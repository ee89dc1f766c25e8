package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/praxis-legal/praxis/internal/middleware"
)

// SlidingWindow implements middleware.Limiter with a Redis sorted set per
// key. Each request is a member scored by its nanosecond timestamp;
// members older than the window are trimmed on every check, so limits are
// enforced consistently across all API instances sharing the Redis.
type SlidingWindow struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewSlidingWindow creates a limiter allowing limit requests per window.
func NewSlidingWindow(client *redis.Client, limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{client: client, limit: limit, window: window}
}

// Allow records a request attempt under key and reports whether it is
// within the limit.
func (l *SlidingWindow) Allow(ctx context.Context, key string) (middleware.RateDecision, error) {
	now := time.Now()
	windowStart := now.Add(-l.window).UnixNano()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return middleware.RateDecision{}, fmt.Errorf("ratelimit trim %q: %w", key, err)
	}

	count := int(countCmd.Val())
	if count >= l.limit {
		return middleware.RateDecision{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			RetryAfter: l.retryAfter(ctx, key, now),
		}, nil
	}

	pipe = l.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return middleware.RateDecision{}, fmt.Errorf("ratelimit record %q: %w", key, err)
	}

	return middleware.RateDecision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - count - 1,
	}, nil
}

// retryAfter computes how long until the oldest request in the window
// expires. Falls back to the full window if the lookup fails.
func (l *SlidingWindow) retryAfter(ctx context.Context, key string, now time.Time) time.Duration {
	oldest, err := l.client.ZRangeWithScores(ctx, key, 0, 0).Result()
	if err != nil || len(oldest) == 0 {
		return l.window
	}
	retry := time.Unix(0, int64(oldest[0].Score)).Add(l.window).Sub(now)
	if retry < 0 {
		return 0
	}
	return retry
}
