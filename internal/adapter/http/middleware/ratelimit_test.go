package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/iho/pocketledger/internal/infrastructure/metrics"
)

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	rl := NewRateLimiter(0.001, 2).WithMetrics(m)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimitHits))
}

func TestRateLimiterKeysByOwnerThenIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(owner, addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		if owner != "" {
			req = req.WithContext(withOwner(req.Context(), owner))
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, serve("alice", "10.0.0.1:1"))
	assert.Equal(t, http.StatusNoContent, serve("bob", "10.0.0.1:2"), "owners are limited independently")
	assert.Equal(t, http.StatusNoContent, serve("", "10.0.0.1:3"))
	assert.Equal(t, http.StatusTooManyRequests, serve("", "10.0.0.1:4"), "port must not split an IP bucket")
}

func TestRateLimiterCleanup(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.getLimiter("ip:a")
	now = now.Add(2 * time.Hour)
	rl.getLimiter("ip:b")

	rl.Cleanup(time.Hour)

	assert.NotContains(t, rl.limiters, "ip:a")
	assert.Contains(t, rl.limiters, "ip:b")
}
