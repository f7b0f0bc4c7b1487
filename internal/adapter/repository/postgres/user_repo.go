package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/postgres/generated"
)

// UserRepository stores API accounts. Every ledger row's owner_id refers to one.
type UserRepository struct {
	db generated.DBTX
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db generated.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const (
	insertUser = `INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	selectUser = `SELECT id, email, name, password_hash, created_at, updated_at FROM users`
)

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Create inserts user. A taken email surfaces as a conflict.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, insertUser,
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return mapError("create user", err)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "get user by id", selectUser+` WHERE id = $1`, id)
}

// GetByEmail expects an already normalized address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "get user by email", selectUser+` WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, op, query, arg string) (*domain.User, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err == nil {
		var row *userRow
		row, err = pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[userRow])
		if err == nil {
			return &domain.User{
				ID:           row.ID,
				Email:        row.Email,
				Name:         row.Name,
				PasswordHash: row.PasswordHash,
				CreatedAt:    row.CreatedAt,
				UpdatedAt:    row.UpdatedAt,
			}, nil
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return nil, mapError(op, err)
}
