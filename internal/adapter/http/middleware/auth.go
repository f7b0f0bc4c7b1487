package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iho/pocketledger/internal/infrastructure/auth"
	"github.com/iho/pocketledger/internal/infrastructure/logger"
)

// OwnerHeader carries the owner id when authentication is disabled.
const OwnerHeader = "X-User-ID"

type contextKey string

const ownerContextKey contextKey = "owner_id"

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate resolves the owner of the request from a bearer token.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(withOwner(r.Context(), claims.UserID)))
		})
	}
}

// TrustOwnerHeader takes the owner from OwnerHeader. Only for deployments
// where an upstream gateway has already authenticated the caller.
func TrustOwnerHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing "+OwnerHeader+" header")
			return
		}

		next.ServeHTTP(w, r.WithContext(withOwner(r.Context(), owner)))
	})
}

// OwnerFromContext returns the owner resolved by the auth middleware.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerContextKey).(string)
	return owner, ok && owner != ""
}

func withOwner(ctx context.Context, owner string) context.Context {
	ctx = context.WithValue(ctx, ownerContextKey, owner)
	return logger.WithOwner(ctx, owner)
}
