package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createCategory = `-- name: CreateCategory :exec
INSERT INTO categories (id, owner_id, name, type, created_at)
VALUES ($1, $2, $3, $4, $5)
`

type CreateCategoryParams struct {
	ID        string             `json:"id"`
	OwnerID   string             `json:"owner_id"`
	Name      string             `json:"name"`
	Type      string             `json:"type"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) error {
	_, err := q.db.Exec(ctx, createCategory,
		arg.ID,
		arg.OwnerID,
		arg.Name,
		arg.Type,
		arg.CreatedAt,
	)
	return err
}

const findCategoryByName = `-- name: FindCategoryByName :one
SELECT id, owner_id, name, type, created_at FROM categories
WHERE owner_id = $1 AND type = $2 AND lower(name) = lower($3)
LIMIT 1
`

type FindCategoryByNameParams struct {
	OwnerID string `json:"owner_id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
}

func (q *Queries) FindCategoryByName(ctx context.Context, arg FindCategoryByNameParams) (Category, error) {
	row := q.db.QueryRow(ctx, findCategoryByName, arg.OwnerID, arg.Type, arg.Name)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Name,
		&i.Type,
		&i.CreatedAt,
	)
	return i, err
}

const getCategoryByID = `-- name: GetCategoryByID :one
SELECT id, owner_id, name, type, created_at FROM categories WHERE id = $1
`

func (q *Queries) GetCategoryByID(ctx context.Context, iD string) (Category, error) {
	row := q.db.QueryRow(ctx, getCategoryByID, iD)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Name,
		&i.Type,
		&i.CreatedAt,
	)
	return i, err
}

const listCategoriesByOwner = `-- name: ListCategoriesByOwner :many
SELECT id, owner_id, name, type, created_at FROM categories
WHERE owner_id = $1
ORDER BY type, name
`

func (q *Queries) ListCategoriesByOwner(ctx context.Context, ownerID string) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategoriesByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Category{}
	for rows.Next() {
		var i Category
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Name,
			&i.Type,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
