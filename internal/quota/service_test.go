package quota

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronomate/chronomate/internal/auth"
)

func setupMiniredis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRateLimiter_AtLimit(t *testing.T) {
	rdb, _ := setupMiniredis(t)
	rl := NewRateLimiter(rdb)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		allowed, err := rl.CheckAndIncrement(ctx, userID, 5)
		require.NoError(t, err)
		assert.True(t, allowed, "call %d should be allowed", i+1)
	}

	allowed, err := rl.CheckAndIncrement(ctx, userID, 5)
	require.NoError(t, err)
	assert.False(t, allowed)

	usage, err := rl.Usage(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, usage)

	allowed, err = rl.CheckAndIncrement(ctx, uuid.New(), 5)
	require.NoError(t, err)
	assert.True(t, allowed, "other users have their own window")
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rdb, _ := setupMiniredis(t)
	rl := NewRateLimiter(rdb)
	ctx := context.Background()
	userID := uuid.New()

	old := float64(time.Now().Add(-70 * time.Second).UnixMilli())
	for i := 0; i < 3; i++ {
		require.NoError(t, rdb.ZAdd(ctx, minuteKey(userID), redis.Z{
			Score:  old + float64(i),
			Member: fmt.Sprintf("old:%d", i),
		}).Err())
	}

	allowed, err := rl.CheckAndIncrement(ctx, userID, 3)
	require.NoError(t, err)
	assert.True(t, allowed, "entries outside the window are dropped")

	usage, err := rl.Usage(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, usage)
}

func TestService_DailyBudget(t *testing.T) {
	rdb, _ := setupMiniredis(t)
	svc := NewService(rdb, Limits{PerDay: 2})
	// 23:00 UTC today, so the counter's expiry lands in the future.
	day := endOfDay(time.Now().UTC()).Add(-time.Hour)
	svc.setNow(func() time.Time { return day })
	ctx := context.Background()
	userID := uuid.New()

	assert.True(t, svc.Allow(ctx, userID))
	assert.True(t, svc.Allow(ctx, userID))
	assert.False(t, svc.Allow(ctx, userID))

	st, err := svc.Status(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, &Status{UsedDay: 2, LimitDay: 2}, st)

	day = day.Add(2 * time.Hour)
	assert.True(t, svc.Allow(ctx, userID), "budget resets on the next UTC day")
}

func TestService_MinuteBudget(t *testing.T) {
	rdb, _ := setupMiniredis(t)
	svc := NewService(rdb, Limits{PerMinute: 1, PerDay: 10})
	ctx := context.Background()
	userID := uuid.New()

	assert.True(t, svc.Allow(ctx, userID))
	assert.False(t, svc.Allow(ctx, userID))

	st, err := svc.Status(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.UsedMinute)
	assert.Equal(t, 1, st.UsedDay, "denied calls are not counted against the day")
}

func TestService_Unlimited(t *testing.T) {
	rdb, mr := setupMiniredis(t)
	svc := NewService(rdb, Limits{})
	for i := 0; i < 50; i++ {
		assert.True(t, svc.Allow(context.Background(), uuid.New()))
	}
	assert.Empty(t, mr.Keys())
}

func TestService_FailsOpen(t *testing.T) {
	rdb, mr := setupMiniredis(t)
	svc := NewService(rdb, Limits{PerMinute: 1, PerDay: 1})
	mr.Close()

	assert.True(t, svc.Allow(context.Background(), uuid.New()))
}

func TestHandler_Get(t *testing.T) {
	rdb, _ := setupMiniredis(t)
	svc := NewService(rdb, Limits{PerMinute: 5, PerDay: 100})
	userID := uuid.New()
	svc.Allow(context.Background(), userID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quota", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.AccessClaims{UserID: userID.String()}))
	rec := httptest.NewRecorder()
	NewHandler(svc).Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"used_minute":1,"limit_minute":5,"used_day":1,"limit_day":100}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewHandler(svc).Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/quota", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
