package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createEntry = `-- name: CreateEntry :exec
INSERT INTO transaction_entries (id, transaction_id, wallet_id, direction, amount, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

type CreateEntryParams struct {
	ID            string             `json:"id"`
	TransactionID string             `json:"transaction_id"`
	WalletID      string             `json:"wallet_id"`
	Direction     string             `json:"direction"`
	Amount        pgtype.Numeric     `json:"amount"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateEntry(ctx context.Context, arg CreateEntryParams) error {
	_, err := q.db.Exec(ctx, createEntry,
		arg.ID,
		arg.TransactionID,
		arg.WalletID,
		arg.Direction,
		arg.Amount,
		arg.CreatedAt,
	)
	return err
}

const listEntriesByTransaction = `-- name: ListEntriesByTransaction :many
SELECT id, transaction_id, wallet_id, direction, amount, created_at FROM transaction_entries
WHERE transaction_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListEntriesByTransaction(ctx context.Context, transactionID string) ([]TransactionEntry, error) {
	rows, err := q.db.Query(ctx, listEntriesByTransaction, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TransactionEntry{}
	for rows.Next() {
		var i TransactionEntry
		if err := rows.Scan(
			&i.ID,
			&i.TransactionID,
			&i.WalletID,
			&i.Direction,
			&i.Amount,
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

const listEntriesByTransactions = `-- name: ListEntriesByTransactions :many
SELECT id, transaction_id, wallet_id, direction, amount, created_at FROM transaction_entries
WHERE transaction_id = ANY($1::text[])
ORDER BY transaction_id, created_at, id
`

func (q *Queries) ListEntriesByTransactions(ctx context.Context, dollar_1 []string) ([]TransactionEntry, error) {
	rows, err := q.db.Query(ctx, listEntriesByTransactions, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TransactionEntry{}
	for rows.Next() {
		var i TransactionEntry
		if err := rows.Scan(
			&i.ID,
			&i.TransactionID,
			&i.WalletID,
			&i.Direction,
			&i.Amount,
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

const sumEntriesByWallet = `-- name: SumEntriesByWallet :one
SELECT COALESCE(SUM(CASE WHEN e.direction = 'in' THEN e.amount ELSE -e.amount END), 0)::NUMERIC(18, 2) AS total
FROM transaction_entries e
JOIN transactions t ON t.id = e.transaction_id
WHERE e.wallet_id = $1 AND t.deleted_at IS NULL
`

func (q *Queries) SumEntriesByWallet(ctx context.Context, walletID string) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumEntriesByWallet, walletID)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
