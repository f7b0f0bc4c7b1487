package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const archiveWallet = `-- name: ArchiveWallet :execrows
UPDATE wallets
SET archived = TRUE, updated_at = $2
WHERE id = $1
`

type ArchiveWalletParams struct {
	ID        string             `json:"id"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) ArchiveWallet(ctx context.Context, arg ArchiveWalletParams) (int64, error) {
	result, err := q.db.Exec(ctx, archiveWallet, arg.ID, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const createWallet = `-- name: CreateWallet :exec
INSERT INTO wallets (id, owner_id, name, kind, opening_balance, current_balance, archived, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateWalletParams struct {
	ID             string             `json:"id"`
	OwnerID        string             `json:"owner_id"`
	Name           string             `json:"name"`
	Kind           string             `json:"kind"`
	OpeningBalance pgtype.Numeric     `json:"opening_balance"`
	CurrentBalance pgtype.Numeric     `json:"current_balance"`
	Archived       bool               `json:"archived"`
	Version        int64              `json:"version"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	UpdatedAt      pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateWallet(ctx context.Context, arg CreateWalletParams) error {
	_, err := q.db.Exec(ctx, createWallet,
		arg.ID,
		arg.OwnerID,
		arg.Name,
		arg.Kind,
		arg.OpeningBalance,
		arg.CurrentBalance,
		arg.Archived,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getWalletByID = `-- name: GetWalletByID :one
SELECT id, owner_id, name, kind, opening_balance, current_balance, archived, version, created_at, updated_at FROM wallets WHERE id = $1
`

func (q *Queries) GetWalletByID(ctx context.Context, iD string) (Wallet, error) {
	row := q.db.QueryRow(ctx, getWalletByID, iD)
	var i Wallet
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Name,
		&i.Kind,
		&i.OpeningBalance,
		&i.CurrentBalance,
		&i.Archived,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getWalletsByIDsForUpdate = `-- name: GetWalletsByIDsForUpdate :many
SELECT id, owner_id, name, kind, opening_balance, current_balance, archived, version, created_at, updated_at FROM wallets
WHERE id = ANY($1::text[])
ORDER BY id
FOR UPDATE
`

func (q *Queries) GetWalletsByIDsForUpdate(ctx context.Context, dollar_1 []string) ([]Wallet, error) {
	rows, err := q.db.Query(ctx, getWalletsByIDsForUpdate, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Wallet{}
	for rows.Next() {
		var i Wallet
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Name,
			&i.Kind,
			&i.OpeningBalance,
			&i.CurrentBalance,
			&i.Archived,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listWalletsByOwner = `-- name: ListWalletsByOwner :many
SELECT id, owner_id, name, kind, opening_balance, current_balance, archived, version, created_at, updated_at FROM wallets
WHERE owner_id = $1 AND (NOT archived OR $2::boolean)
ORDER BY created_at, id
`

type ListWalletsByOwnerParams struct {
	OwnerID         string `json:"owner_id"`
	IncludeArchived bool   `json:"include_archived"`
}

func (q *Queries) ListWalletsByOwner(ctx context.Context, arg ListWalletsByOwnerParams) ([]Wallet, error) {
	rows, err := q.db.Query(ctx, listWalletsByOwner, arg.OwnerID, arg.IncludeArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Wallet{}
	for rows.Next() {
		var i Wallet
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Name,
			&i.Kind,
			&i.OpeningBalance,
			&i.CurrentBalance,
			&i.Archived,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updateWalletBalance = `-- name: UpdateWalletBalance :execrows
UPDATE wallets
SET current_balance = $2, version = version + 1, updated_at = $3
WHERE id = $1
`

type UpdateWalletBalanceParams struct {
	ID             string             `json:"id"`
	CurrentBalance pgtype.Numeric     `json:"current_balance"`
	UpdatedAt      pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateWalletBalance(ctx context.Context, arg UpdateWalletBalanceParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateWalletBalance, arg.ID, arg.CurrentBalance, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
