package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
	"github.com/iho/pocketledger/internal/usecase"
)

// UserService defines the behavior needed by AuthHandler.
type UserService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// TokenIssuer issues bearer tokens.
type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
	TokenDuration() time.Duration
}

// AuthHandler handles registration, login and identity endpoints.
type AuthHandler struct {
	users   UserService
	tokens  TokenIssuer
	metrics *metrics.Metrics
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users UserService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// WithMetrics counts login attempts.
func (h *AuthHandler) WithMetrics(m *metrics.Metrics) *AuthHandler {
	h.metrics = m
	return h
}

// Register creates a user and returns a token for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.recordAttempt("failure")
		writeDomainError(w, r, err)
		return
	}

	h.recordAttempt("success")
	h.respondWithToken(w, r, http.StatusOK, user)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), owner)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, status, dto.AuthResponse{
		Token:     token,
		ExpiresIn: int64(h.tokens.TokenDuration().Seconds()),
		User:      dto.UserFromDomain(user),
	})
}

func (h *AuthHandler) recordAttempt(status string) {
	if h.metrics != nil {
		h.metrics.AuthAttempts.WithLabelValues(status).Inc()
	}
}
