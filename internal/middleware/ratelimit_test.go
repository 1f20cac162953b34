package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRateLimiter(t *testing.T, maxReqs int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client, "auth", maxReqs, time.Minute), mr
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func hit(h http.Handler, remote string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = remote
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl, mr := setupRateLimiter(t, 3)
	h := rl.Middleware(okHandler)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:12345", nil).Code, "request %d", i+1)
	}

	rec := hit(h, "10.0.0.1:12345", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"too many requests"}`, rec.Body.String())
	assert.True(t, mr.Exists("ratelimit:auth:10.0.0.1"))
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	rl, _ := setupRateLimiter(t, 2)
	h := rl.Middleware(okHandler)

	hit(h, "1.1.1.1:1", nil)
	hit(h, "1.1.1.1:1", nil)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "1.1.1.1:1", nil).Code)
	assert.Equal(t, http.StatusOK, hit(h, "2.2.2.2:1", nil).Code)
}

func TestRateLimiter_UsesForwardedFor(t *testing.T) {
	rl, _ := setupRateLimiter(t, 1)
	h := rl.Middleware(okHandler)

	xff := map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1", xff).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.2:1", xff).Code)
	assert.Equal(t, http.StatusOK, hit(h, "10.0.0.2:1", nil).Code)
}

func TestRateLimiter_FailsOpenOnRedisError(t *testing.T) {
	rl, mr := setupRateLimiter(t, 1)
	mr.Close()

	assert.Equal(t, http.StatusOK, hit(rl.Middleware(okHandler), "3.3.3.3:1", nil).Code)
}
