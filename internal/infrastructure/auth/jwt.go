package auth

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/iho/pocketledger/internal/domain"
)

const issuer = "pocketledger"

// clockSkew is tolerated on exp/nbf/iat between API replicas.
const clockSkew = 30 * time.Second

// Claims carry the owner of every ledger call made with the token. The owner
// id is mirrored in the registered subject.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 owner tokens.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
	parser        *jwt.Parser
}

// NewJWTManager creates a manager signing with secretKey.
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	m := &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
	m.parser = m.newParser()
	return m
}

// WithClock replaces the time source used to stamp and check tokens.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	m.parser = m.newParser()
	return m
}

func (m *JWTManager) newParser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
}

// TokenDuration reports how long issued tokens stay valid.
func (m *JWTManager) TokenDuration() time.Duration {
	return m.tokenDuration
}

// Generate issues a token owned by user.
func (m *JWTManager) Generate(user *domain.User) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
			Issuer:    issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

// Verify parses tokenString. Expired tokens yield domain.ErrExpiredToken;
// every other rejection is domain.ErrInvalidToken.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secretKey, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrExpiredToken
	case err != nil:
		return nil, domain.ErrInvalidToken
	}

	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
