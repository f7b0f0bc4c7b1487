package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

// memoryIdempotencyStore mimics the Redis store, including Release.
type memoryIdempotencyStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	released []string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{data: make(map[string][]byte)}
}

func (s *memoryIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.data[key]; ok {
		return true, v, nil
	}
	if response == nil {
		response = []byte(pendingMarker)
	}
	s.data[key] = response
	return false, nil, nil
}

func (s *memoryIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = response
	return nil
}

func (s *memoryIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	s.released = append(s.released, key)
	return nil
}

func postWithKey(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req.WithContext(withOwner(req.Context(), "owner-1"))
}

func TestIdempotencyMiddleware_ReplaysCompletedResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Hour)

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"t-1"}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, postWithKey("abc"))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, postWithKey("abc"))

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, `{"id":"t-1"}`, second.Body.String())
	assert.Equal(t, "true", second.Header().Get(IdempotencyReplayHeader))
}

func TestIdempotencyMiddleware_ScopesKeysByOwner(t *testing.T) {
	var keys []string
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			keys = append(keys, key)
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("abc"))

	other := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", nil)
	other.Header.Set(IdempotencyKeyHeader, "abc")
	handler.ServeHTTP(httptest.NewRecorder(), other.WithContext(withOwner(other.Context(), "owner-2")))

	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestIdempotencyMiddleware_PendingKeyConflicts(t *testing.T) {
	store := newMemoryIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Hour)

	var inner *httptest.ResponseRecorder
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a retry arrives while the first request is still running
		inner = httptest.NewRecorder()
		mw.Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("duplicate request must not reach the handler")
		})).ServeHTTP(inner, postWithKey("abc"))
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("abc"))

	require.NotNil(t, inner)
	assert.Equal(t, http.StatusConflict, inner.Code)
}

func TestIdempotencyMiddleware_IgnoresStoreErrors(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, postWithKey("key-err"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesFailedResponses(t *testing.T) {
	store := newMemoryIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Hour)

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusConflict)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("key-fail"))
	handler.ServeHTTP(httptest.NewRecorder(), postWithKey("key-fail"))

	assert.Equal(t, 2, calls, "failed requests must be retryable")
	assert.Len(t, store.released, 2)
}

func TestIdempotencyMiddleware_SkipsReadsAndMissingKeys(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatal("store must not be consulted")
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	get := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
	get.Header.Set(IdempotencyKeyHeader, "abc")
	rr := httptest.NewRecorder()
	mw.Wrap(next).ServeHTTP(rr, get)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	mw.Wrap(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/wallets", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestIdempotencyMiddleware_RejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newMemoryIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Hour)

	var bodies []string
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		w.WriteHeader(http.StatusCreated)
	}))

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
		req.Header.Set(IdempotencyKeyHeader, "same-key")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req.WithContext(withOwner(req.Context(), "owner-1")))
		return rr
	}

	require.Equal(t, http.StatusCreated, post(`{"amount":"10.00"}`).Code)
	assert.Equal(t, http.StatusCreated, post(`{"amount":"10.00"}`).Code)

	reused := post(`{"amount":"99.00"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, reused.Code)
	assert.Contains(t, reused.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	assert.Equal(t, []string{`{"amount":"10.00"}`}, bodies, "handler sees the original body exactly once")
}
