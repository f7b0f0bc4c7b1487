package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRecovery_WritesJSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.Use(Recovery)
	r.Post("/api/v1/wallets/{id}/reconcile", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	before := testutil.ToFloat64(httpPanicsTotal.WithLabelValues("/api/v1/wallets/{id}/reconcile"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/wallets/w-1/reconcile", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"INTERNAL","message":"internal server error"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
	assert.Contains(t, buf.String(), `"panic":"boom"`)
	assert.Contains(t, buf.String(), `"status":500`)
	assert.Equal(t, before+1, testutil.ToFloat64(httpPanicsTotal.WithLabelValues("/api/v1/wallets/{id}/reconcile")))
}

func TestRecovery_KeepsStartedResponse(t *testing.T) {
	rr := httptest.NewRecorder()

	Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("late failure")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "partial", rr.Body.String())
}

func TestRecovery_RepanicsOnAbort(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
