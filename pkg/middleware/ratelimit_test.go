package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := newRateLimiter(1, 2, zap.NewNop())
	h := rl.Middleware(okHandler())

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/checkout/1/payment/return", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001"))
	// Same host on a different port shares the bucket
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := newRateLimiter(1, 1, zap.NewNop())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.getLimiter("a")
	now = now.Add(10 * time.Minute)
	rl.getLimiter("b")

	assert.Equal(t, 1, rl.cleanup())
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "b")
}

func TestRateLimiter_EvictsOldest(t *testing.T) {
	rl := newRateLimiter(1, 1, zap.NewNop())
	rl.maxSize = 2
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { now = now.Add(time.Second); return now }

	rl.getLimiter("a")
	rl.getLimiter("b")
	rl.getLimiter("c")

	assert.Len(t, rl.limiters, 2)
	assert.NotContains(t, rl.limiters, "a")
}

func TestRateLimiter_ShutdownTwice(t *testing.T) {
	rl := NewRateLimiter(1, 1, zap.NewNop())
	rl.Shutdown()
	assert.NotPanics(t, rl.Shutdown)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4321"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.RemoteAddr = "192.0.2.1"
	assert.Equal(t, "192.0.2.1", ClientIP(req))
}
