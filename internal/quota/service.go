// Package quota budgets generative backend calls per user. When a user is
// over budget the assistant answers from templates instead.
package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const dayKeyPrefix = "quota:generate:day:"

type Limits struct {
	PerMinute int
	PerDay    int
}

// Status is the user's current usage.
type Status struct {
	UsedMinute  int `json:"used_minute"`
	LimitMinute int `json:"limit_minute"`
	UsedDay     int `json:"used_day"`
	LimitDay    int `json:"limit_day"`
}

type Service struct {
	rdb     redis.Cmdable
	limiter *RateLimiter
	limits  Limits
	now     func() time.Time
}

func NewService(rdb redis.Cmdable, limits Limits) *Service {
	return &Service{
		rdb:     rdb,
		limiter: NewRateLimiter(rdb),
		limits:  limits,
		now:     time.Now,
	}
}

func (s *Service) setNow(now func() time.Time) {
	s.now = now
	s.limiter.now = now
}

func dayKey(userID uuid.UUID, day time.Time) string {
	return dayKeyPrefix + userID.String() + ":" + day.Format("20060102")
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

// Allow reports whether the user may make one more generative call and, if
// so, counts it. A zero limit disables that check. Redis failures fail open.
func (s *Service) Allow(ctx context.Context, userID uuid.UUID) bool {
	if s.limits.PerMinute > 0 {
		ok, err := s.limiter.CheckAndIncrement(ctx, userID, s.limits.PerMinute)
		if err != nil {
			slog.Warn("quota: rate limiter check failed, allowing call", "user_id", userID, "error", err)
		} else if !ok {
			slog.Info("quota: minute budget exhausted", "user_id", userID, "limit", s.limits.PerMinute)
			return false
		}
	}

	if s.limits.PerDay > 0 {
		now := s.now().UTC()
		key := dayKey(userID, now)

		pipe := s.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.ExpireAt(ctx, key, endOfDay(now).Add(time.Hour))
		if _, err := pipe.Exec(ctx); err != nil {
			slog.Warn("quota: daily counter failed, allowing call", "user_id", userID, "error", err)
			return true
		}
		if incr.Val() > int64(s.limits.PerDay) {
			slog.Info("quota: daily budget exhausted", "user_id", userID, "limit", s.limits.PerDay)
			return false
		}
	}
	return true
}

func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*Status, error) {
	st := &Status{LimitMinute: s.limits.PerMinute, LimitDay: s.limits.PerDay}

	minute, err := s.limiter.Usage(ctx, userID)
	if err != nil {
		return nil, err
	}
	st.UsedMinute = minute

	val, err := s.rdb.Get(ctx, dayKey(userID, s.now().UTC())).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return nil, fmt.Errorf("getting daily usage: %w", err)
	default:
		used, convErr := strconv.Atoi(val)
		if convErr != nil {
			return nil, fmt.Errorf("parsing daily usage %q: %w", val, convErr)
		}
		st.UsedDay = min(used, s.limits.PerDay)
	}
	return st, nil
}
