package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/infrastructure/auth"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
	"github.com/iho/pocketledger/internal/usecase"
	"github.com/iho/pocketledger/internal/usecase/mocks"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *auth.JWTManager, *metrics.Metrics) {
	t.Helper()

	store := mocks.NewMemoryStore()
	users := usecase.NewUserUseCase(store.Users(), mocks.NewSequenceIDGenerator("user"))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	m := metrics.New(prometheus.NewRegistry())

	return NewAuthHandler(users, jwtManager).WithMetrics(m), jwtManager, m
}

func postJSON(h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data)))
	return rr
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	h, jwtManager, m := newAuthHandler(t)

	rr := postJSON(h.Register, dto.RegisterRequest{Email: "Ada@Example.com", Name: "Ada", Password: "Secret123"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	registered := decode[dto.AuthResponse](t, rr)
	assert.Equal(t, "ada@example.com", registered.User.Email)
	assert.Equal(t, int64(3600), registered.ExpiresIn)
	assert.NotContains(t, rr.Body.String(), "password")

	claims, err := jwtManager.Verify(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	rr = postJSON(h.Login, dto.LoginRequest{Email: "ada@example.com", Password: "Secret123"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, registered.User.ID, decode[dto.AuthResponse](t, rr).User.ID)

	rr = postJSON(h.Login, dto.LoginRequest{Email: "ada@example.com", Password: "Wrong1234"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthAttempts.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthAttempts.WithLabelValues("failure")))
}

func TestAuthHandler_RegisterErrors(t *testing.T) {
	h, _, _ := newAuthHandler(t)

	rr := postJSON(h.Register, dto.RegisterRequest{Email: "ada", Name: "Ada", Password: "Secret123"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_EMAIL", decode[dto.ErrorResponse](t, rr).Error)

	rr = postJSON(h.Register, dto.RegisterRequest{Email: "ada@example.com", Name: "Ada", Password: "Secret123"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postJSON(h.Register, dto.RegisterRequest{Email: "ada@example.com", Name: "Ada", Password: "Secret123"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "EMAIL_TAKEN", decode[dto.ErrorResponse](t, rr).Error)
}

func TestAuthHandler_Me(t *testing.T) {
	h, _, _ := newAuthHandler(t)

	rr := postJSON(h.Register, dto.RegisterRequest{Email: "ada@example.com", Name: "Ada", Password: "Secret123"})
	require.Equal(t, http.StatusCreated, rr.Code)
	userID := decode[dto.AuthResponse](t, rr).User.ID

	rr = serveAs(t, userID, http.MethodGet, "/auth/me", "/auth/me", h.Me, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "ada@example.com", decode[dto.UserResponse](t, rr).Email)

	rr = serveAs(t, "ghost", http.MethodGet, "/auth/me", "/auth/me", h.Me, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
