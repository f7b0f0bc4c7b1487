package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler().
		WithCheck("postgres", PingFunc(func(ctx context.Context) error { return nil })).
		WithCheck("redis", nil)

	rr := httptest.NewRecorder()
	h.Liveness(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ready","postgres":"ok"}`, rr.Body.String())
}

func TestHealthHandlerNotReady(t *testing.T) {
	h := NewHealthHandler().
		WithCheck("postgres", PingFunc(func(ctx context.Context) error { return nil })).
		WithCheck("redis", PingFunc(func(ctx context.Context) error { return errors.New("connection refused") }))

	rr := httptest.NewRecorder()
	h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "redis unhealthy")
}
