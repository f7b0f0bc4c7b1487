package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if srv != nil {
		args = append([]string{"--url", srv.URL, "--currency", "USD"}, args...)
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func jsonServer(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}))

	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestHashPasswordCmd(t *testing.T) {
	orig := bcryptGenerate
	bcryptGenerate = func(p []byte, cost int) ([]byte, error) {
		return []byte("hashed-value"), nil
	}
	defer func() { bcryptGenerate = orig }()

	out, err := runCLI(t, nil, "hash-password", "secret")
	require.NoError(t, err)
	assert.Equal(t, "hashed-value", strings.TrimSpace(out))
}

func TestWalletsListSendsCredentials(t *testing.T) {
	srv := jsonServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/v1/wallets": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "true", r.URL.Query().Get("include_archived"))
			writeBody(w, http.StatusOK, map[string]any{"wallets": []map[string]any{
				{"id": "w-1", "name": "Bank", "kind": "bank", "current_balance": "1234.50"},
				{"id": "w-2", "name": "Old", "kind": "cash", "current_balance": "10.00", "archived": true},
			}})
		},
	})

	out, err := runCLI(t, srv, "--token", "tok", "wallets", "list", "--archived")
	require.NoError(t, err)
	assert.Contains(t, out, "$1,234.50")
	assert.Contains(t, out, "w-2")
}

func TestLedgerConsistency(t *testing.T) {
	t.Run("passes", func(t *testing.T) {
		srv := jsonServer(t, map[string]func(http.ResponseWriter, *http.Request){
			"/api/v1/ledger/consistency": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "owner-1", r.Header.Get("X-User-ID"))
				writeBody(w, http.StatusOK, map[string]any{"consistent": true})
			},
		})

		out, err := runCLI(t, srv, "--owner", "owner-1", "ledger", "consistency")
		require.NoError(t, err)
		assert.Contains(t, out, "PASSED")
	})

	t.Run("reports drift", func(t *testing.T) {
		srv := jsonServer(t, map[string]func(http.ResponseWriter, *http.Request){
			"/api/v1/ledger/consistency": func(w http.ResponseWriter, r *http.Request) {
				writeBody(w, http.StatusConflict, map[string]any{
					"consistent": false,
					"wallets":    []map[string]any{{"wallet_id": "w-1", "recorded": "10.00", "computed": "12.00"}},
				})
			},
		})

		out, err := runCLI(t, srv, "ledger", "consistency")
		assert.ErrorIs(t, err, errInconsistent)
		assert.Contains(t, out, "wallet w-1: recorded $10.00, entries $12.00")
	})
}

func TestAPIErrorSurfacesCode(t *testing.T) {
	srv := jsonServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/v1/wallets/w-9/reconcile": func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, http.StatusNotFound, map[string]string{"error": "WALLET_NOT_FOUND", "message": "wallet not found"})
		},
	})

	_, err := runCLI(t, srv, "wallets", "reconcile", "w-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WALLET_NOT_FOUND")
}

func TestLoansStats(t *testing.T) {
	srv := jsonServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"/api/v1/loans/stats": func(w http.ResponseWriter, r *http.Request) {
			writeBody(w, http.StatusOK, map[string]any{
				"you_owe":     map[string]any{"count": 1, "total_amount": "200.00"},
				"owed_to_you": map[string]any{"count": 0, "total_amount": "0.00"},
				"total_loans": 3,
			})
		},
	})

	out, err := runCLI(t, srv, "loans", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "$200.00")
	assert.Contains(t, out, "total loans")
}
