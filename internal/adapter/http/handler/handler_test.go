package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/pocketledger/internal/adapter/http/middleware"
)

const testOwner = "owner-1"

// serve routes a single request through a chi router so URL params resolve,
// with the owner taken from the trusted header.
func serve(t *testing.T, method, pattern, target string, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	return serveAs(t, testOwner, method, pattern, target, h, body)
}

func serveAs(t *testing.T, owner, method, pattern, target string, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Use(middleware.TrustOwnerHeader)
	r.MethodFunc(method, pattern, h)

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(middleware.OwnerHeader, owner)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}
