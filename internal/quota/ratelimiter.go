package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	minuteKeyPrefix = "quota:generate:minute:"
	windowDuration  = 60 * time.Second
	keyTTL          = 90 * time.Second
)

// RateLimiter is a sliding one-minute window kept in a Redis sorted set.
type RateLimiter struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewRateLimiter(rdb redis.Cmdable) *RateLimiter {
	return &RateLimiter{rdb: rdb, now: time.Now}
}

func minuteKey(userID uuid.UUID) string {
	return minuteKeyPrefix + userID.String()
}

func score(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// CheckAndIncrement records a call and returns true when the user is
// under limit calls in the last minute. Denied calls are not recorded.
func (rl *RateLimiter) CheckAndIncrement(ctx context.Context, userID uuid.UUID, limit int) (bool, error) {
	key := minuteKey(userID)
	now := rl.now()

	pipe := rl.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", score(now.Add(-windowDuration)))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limiter pipeline (clean+count): %w", err)
	}

	count := countCmd.Val()
	if count >= int64(limit) {
		return false, nil
	}

	pipe = rl.rdb.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d:%d", now.UnixNano(), count),
	})
	pipe.Expire(ctx, key, keyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limiter pipeline (add): %w", err)
	}
	return true, nil
}

// Usage returns the number of calls in the current window.
func (rl *RateLimiter) Usage(ctx context.Context, userID uuid.UUID) (int, error) {
	now := rl.now()
	count, err := rl.rdb.ZCount(ctx, minuteKey(userID), score(now.Add(-windowDuration)), score(now)).Result()
	if err != nil {
		return 0, fmt.Errorf("getting minute usage: %w", err)
	}
	return int(count), nil
}
