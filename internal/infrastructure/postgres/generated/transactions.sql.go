package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countTransactions = `-- name: CountTransactions :one
SELECT COUNT(*)
FROM transactions t
LEFT JOIN loan_payments lp ON lp.transaction_id = t.id
WHERE t.owner_id = $1
  AND t.deleted_at IS NULL
  AND ($2::text IS NULL OR t.type = $2)
  AND ($3::timestamptz IS NULL OR t.transaction_date >= $3)
  AND ($4::timestamptz IS NULL OR t.transaction_date <= $4)
  AND ($5::text IS NULL OR t.category_id = $5)
  AND ($6::text IS NULL OR EXISTS (
        SELECT 1 FROM transaction_entries e WHERE e.transaction_id = t.id AND e.wallet_id = $6))
  AND (NOT $7::boolean OR (t.loan_id IS NULL AND lp.id IS NULL))
`

type CountTransactionsParams struct {
	OwnerID            string             `json:"owner_id"`
	Type               pgtype.Text        `json:"type"`
	DateFrom           pgtype.Timestamptz `json:"date_from"`
	DateTo             pgtype.Timestamptz `json:"date_to"`
	CategoryID         pgtype.Text        `json:"category_id"`
	WalletID           pgtype.Text        `json:"wallet_id"`
	ExcludeLoanRelated bool               `json:"exclude_loan_related"`
}

func (q *Queries) CountTransactions(ctx context.Context, arg CountTransactionsParams) (int64, error) {
	row := q.db.QueryRow(ctx, countTransactions,
		arg.OwnerID,
		arg.Type,
		arg.DateFrom,
		arg.DateTo,
		arg.CategoryID,
		arg.WalletID,
		arg.ExcludeLoanRelated,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (id, owner_id, type, transaction_date, category_id, amount, note, loan_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateTransactionParams struct {
	ID              string             `json:"id"`
	OwnerID         string             `json:"owner_id"`
	Type            string             `json:"type"`
	TransactionDate pgtype.Timestamptz `json:"transaction_date"`
	CategoryID      pgtype.Text        `json:"category_id"`
	Amount          pgtype.Numeric     `json:"amount"`
	Note            string             `json:"note"`
	LoanID          pgtype.Text        `json:"loan_id"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.Exec(ctx, createTransaction,
		arg.ID,
		arg.OwnerID,
		arg.Type,
		arg.TransactionDate,
		arg.CategoryID,
		arg.Amount,
		arg.Note,
		arg.LoanID,
		arg.CreatedAt,
	)
	return err
}

const getTransactionByID = `-- name: GetTransactionByID :one
SELECT t.id, t.owner_id, t.type, t.transaction_date, t.category_id, t.amount, t.note, t.loan_id,
       lp.id AS loan_payment_id, t.deleted_at, t.created_at
FROM transactions t
LEFT JOIN loan_payments lp ON lp.transaction_id = t.id
WHERE t.id = $1
`

type GetTransactionByIDRow struct {
	ID              string             `json:"id"`
	OwnerID         string             `json:"owner_id"`
	Type            string             `json:"type"`
	TransactionDate pgtype.Timestamptz `json:"transaction_date"`
	CategoryID      pgtype.Text        `json:"category_id"`
	Amount          pgtype.Numeric     `json:"amount"`
	Note            string             `json:"note"`
	LoanID          pgtype.Text        `json:"loan_id"`
	LoanPaymentID   pgtype.Text        `json:"loan_payment_id"`
	DeletedAt       pgtype.Timestamptz `json:"deleted_at"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) GetTransactionByID(ctx context.Context, iD string) (GetTransactionByIDRow, error) {
	row := q.db.QueryRow(ctx, getTransactionByID, iD)
	var i GetTransactionByIDRow
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Type,
		&i.TransactionDate,
		&i.CategoryID,
		&i.Amount,
		&i.Note,
		&i.LoanID,
		&i.LoanPaymentID,
		&i.DeletedAt,
		&i.CreatedAt,
	)
	return i, err
}

const getTransactionByIDForUpdate = `-- name: GetTransactionByIDForUpdate :one
SELECT t.id, t.owner_id, t.type, t.transaction_date, t.category_id, t.amount, t.note, t.loan_id,
       lp.id AS loan_payment_id, t.deleted_at, t.created_at
FROM transactions t
LEFT JOIN loan_payments lp ON lp.transaction_id = t.id
WHERE t.id = $1
FOR UPDATE OF t
`

type GetTransactionByIDForUpdateRow struct {
	ID              string             `json:"id"`
	OwnerID         string             `json:"owner_id"`
	Type            string             `json:"type"`
	TransactionDate pgtype.Timestamptz `json:"transaction_date"`
	CategoryID      pgtype.Text        `json:"category_id"`
	Amount          pgtype.Numeric     `json:"amount"`
	Note            string             `json:"note"`
	LoanID          pgtype.Text        `json:"loan_id"`
	LoanPaymentID   pgtype.Text        `json:"loan_payment_id"`
	DeletedAt       pgtype.Timestamptz `json:"deleted_at"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) GetTransactionByIDForUpdate(ctx context.Context, iD string) (GetTransactionByIDForUpdateRow, error) {
	row := q.db.QueryRow(ctx, getTransactionByIDForUpdate, iD)
	var i GetTransactionByIDForUpdateRow
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Type,
		&i.TransactionDate,
		&i.CategoryID,
		&i.Amount,
		&i.Note,
		&i.LoanID,
		&i.LoanPaymentID,
		&i.DeletedAt,
		&i.CreatedAt,
	)
	return i, err
}

const getTransactionByLoanIDForUpdate = `-- name: GetTransactionByLoanIDForUpdate :one
SELECT t.id, t.owner_id, t.type, t.transaction_date, t.category_id, t.amount, t.note, t.loan_id,
       lp.id AS loan_payment_id, t.deleted_at, t.created_at
FROM transactions t
LEFT JOIN loan_payments lp ON lp.transaction_id = t.id
WHERE t.loan_id = $1
FOR UPDATE OF t
`

type GetTransactionByLoanIDForUpdateRow struct {
	ID              string             `json:"id"`
	OwnerID         string             `json:"owner_id"`
	Type            string             `json:"type"`
	TransactionDate pgtype.Timestamptz `json:"transaction_date"`
	CategoryID      pgtype.Text        `json:"category_id"`
	Amount          pgtype.Numeric     `json:"amount"`
	Note            string             `json:"note"`
	LoanID          pgtype.Text        `json:"loan_id"`
	LoanPaymentID   pgtype.Text        `json:"loan_payment_id"`
	DeletedAt       pgtype.Timestamptz `json:"deleted_at"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) GetTransactionByLoanIDForUpdate(ctx context.Context, loanID pgtype.Text) (GetTransactionByLoanIDForUpdateRow, error) {
	row := q.db.QueryRow(ctx, getTransactionByLoanIDForUpdate, loanID)
	var i GetTransactionByLoanIDForUpdateRow
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Type,
		&i.TransactionDate,
		&i.CategoryID,
		&i.Amount,
		&i.Note,
		&i.LoanID,
		&i.LoanPaymentID,
		&i.DeletedAt,
		&i.CreatedAt,
	)
	return i, err
}

const listTransactions = `-- name: ListTransactions :many
SELECT t.id, t.owner_id, t.type, t.transaction_date, t.category_id, t.amount, t.note, t.loan_id,
       lp.id AS loan_payment_id, t.deleted_at, t.created_at,
       COUNT(*) OVER () AS total_count
FROM transactions t
LEFT JOIN loan_payments lp ON lp.transaction_id = t.id
WHERE t.owner_id = $1
  AND t.deleted_at IS NULL
  AND ($2::text IS NULL OR t.type = $2)
  AND ($3::timestamptz IS NULL OR t.transaction_date >= $3)
  AND ($4::timestamptz IS NULL OR t.transaction_date <= $4)
  AND ($5::text IS NULL OR t.category_id = $5)
  AND ($6::text IS NULL OR EXISTS (
        SELECT 1 FROM transaction_entries e WHERE e.transaction_id = t.id AND e.wallet_id = $6))
  AND (NOT $7::boolean OR (t.loan_id IS NULL AND lp.id IS NULL))
ORDER BY t.transaction_date DESC, t.created_at DESC, t.id DESC
LIMIT $8 OFFSET $9
`

type ListTransactionsParams struct {
	OwnerID            string             `json:"owner_id"`
	Type               pgtype.Text        `json:"type"`
	DateFrom           pgtype.Timestamptz `json:"date_from"`
	DateTo             pgtype.Timestamptz `json:"date_to"`
	CategoryID         pgtype.Text        `json:"category_id"`
	WalletID           pgtype.Text        `json:"wallet_id"`
	ExcludeLoanRelated bool               `json:"exclude_loan_related"`
	RowLimit           int32              `json:"row_limit"`
	RowOffset          int32              `json:"row_offset"`
}

type ListTransactionsRow struct {
	ID              string             `json:"id"`
	OwnerID         string             `json:"owner_id"`
	Type            string             `json:"type"`
	TransactionDate pgtype.Timestamptz `json:"transaction_date"`
	CategoryID      pgtype.Text        `json:"category_id"`
	Amount          pgtype.Numeric     `json:"amount"`
	Note            string             `json:"note"`
	LoanID          pgtype.Text        `json:"loan_id"`
	LoanPaymentID   pgtype.Text        `json:"loan_payment_id"`
	DeletedAt       pgtype.Timestamptz `json:"deleted_at"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
	TotalCount      int64              `json:"total_count"`
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]ListTransactionsRow, error) {
	rows, err := q.db.Query(ctx, listTransactions,
		arg.OwnerID,
		arg.Type,
		arg.DateFrom,
		arg.DateTo,
		arg.CategoryID,
		arg.WalletID,
		arg.ExcludeLoanRelated,
		arg.RowLimit,
		arg.RowOffset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListTransactionsRow{}
	for rows.Next() {
		var i ListTransactionsRow
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Type,
			&i.TransactionDate,
			&i.CategoryID,
			&i.Amount,
			&i.Note,
			&i.LoanID,
			&i.LoanPaymentID,
			&i.DeletedAt,
			&i.CreatedAt,
			&i.TotalCount,
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

const softDeleteTransaction = `-- name: SoftDeleteTransaction :execrows
UPDATE transactions SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL
`

type SoftDeleteTransactionParams struct {
	ID        string             `json:"id"`
	DeletedAt pgtype.Timestamptz `json:"deleted_at"`
}

func (q *Queries) SoftDeleteTransaction(ctx context.Context, arg SoftDeleteTransactionParams) (int64, error) {
	result, err := q.db.Exec(ctx, softDeleteTransaction, arg.ID, arg.DeletedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
