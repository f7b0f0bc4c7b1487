package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/domain"
)

func TestUserRepository_GetByEmail(t *testing.T) {
	pool := newMockPool(t)
	now := time.Now().UTC()

	pool.ExpectQuery("FROM users WHERE email = \\$1").
		WithArgs("ada@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at", "updated_at"}).
			AddRow("user-1", "ada@example.com", "Ada", "$2a$10$hash", now, now))

	user, err := NewUserRepository(pool).GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)

	assertExpectations(t, pool)
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs("user-x").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewUserRepository(pool).GetByID(context.Background(), "user-x")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	pool := newMockPool(t)
	now := time.Now().UTC()

	pool.ExpectExec("INSERT INTO users").
		WithArgs("user-2", "ada@example.com", "Ada", "hash", now, now).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "users_email_key"})

	err := NewUserRepository(pool).Create(context.Background(), &domain.User{
		ID:           "user-2",
		Email:        "ada@example.com",
		Name:         "Ada",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUserRepository_GetByEmailEmptyResult(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM users WHERE email = \\$1").
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at", "updated_at"}))

	_, err := NewUserRepository(pool).GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assertExpectations(t, pool)
}

func TestUserRepository_QueryFailureIsStorage(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM users WHERE id = \\$1").
		WithArgs("user-1").
		WillReturnError(errors.New("connection reset"))

	_, err := NewUserRepository(pool).GetByID(context.Background(), "user-1")
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorContains(t, err, "get user by id")
}
