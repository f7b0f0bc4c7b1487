package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createLoan = `-- name: CreateLoan :exec
INSERT INTO loans (id, owner_id, kind, counterparty_name, principal, outstanding_amount, wallet_id, start_date, due_date, status, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

type CreateLoanParams struct {
	ID                string             `json:"id"`
	OwnerID           string             `json:"owner_id"`
	Kind              string             `json:"kind"`
	CounterpartyName  string             `json:"counterparty_name"`
	Principal         pgtype.Numeric     `json:"principal"`
	OutstandingAmount pgtype.Numeric     `json:"outstanding_amount"`
	WalletID          string             `json:"wallet_id"`
	StartDate         pgtype.Timestamptz `json:"start_date"`
	DueDate           pgtype.Timestamptz `json:"due_date"`
	Status            string             `json:"status"`
	Note              string             `json:"note"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateLoan(ctx context.Context, arg CreateLoanParams) error {
	_, err := q.db.Exec(ctx, createLoan,
		arg.ID,
		arg.OwnerID,
		arg.Kind,
		arg.CounterpartyName,
		arg.Principal,
		arg.OutstandingAmount,
		arg.WalletID,
		arg.StartDate,
		arg.DueDate,
		arg.Status,
		arg.Note,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getLoanByID = `-- name: GetLoanByID :one
SELECT id, owner_id, kind, counterparty_name, principal, outstanding_amount, wallet_id, start_date, due_date, status, note, deleted_at, created_at, updated_at FROM loans WHERE id = $1
`

func (q *Queries) GetLoanByID(ctx context.Context, iD string) (Loan, error) {
	row := q.db.QueryRow(ctx, getLoanByID, iD)
	var i Loan
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Kind,
		&i.CounterpartyName,
		&i.Principal,
		&i.OutstandingAmount,
		&i.WalletID,
		&i.StartDate,
		&i.DueDate,
		&i.Status,
		&i.Note,
		&i.DeletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getLoanByIDForUpdate = `-- name: GetLoanByIDForUpdate :one
SELECT id, owner_id, kind, counterparty_name, principal, outstanding_amount, wallet_id, start_date, due_date, status, note, deleted_at, created_at, updated_at FROM loans WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetLoanByIDForUpdate(ctx context.Context, iD string) (Loan, error) {
	row := q.db.QueryRow(ctx, getLoanByIDForUpdate, iD)
	var i Loan
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Kind,
		&i.CounterpartyName,
		&i.Principal,
		&i.OutstandingAmount,
		&i.WalletID,
		&i.StartDate,
		&i.DueDate,
		&i.Status,
		&i.Note,
		&i.DeletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listLoans = `-- name: ListLoans :many
SELECT id, owner_id, kind, counterparty_name, principal, outstanding_amount, wallet_id, start_date, due_date, status, note, deleted_at, created_at, updated_at FROM loans
WHERE owner_id = $1
  AND deleted_at IS NULL
  AND ($2::text IS NULL OR kind = $2)
  AND ($3::text IS NULL OR status = $3)
ORDER BY created_at DESC, id DESC
LIMIT $4 OFFSET $5
`

type ListLoansParams struct {
	OwnerID   string      `json:"owner_id"`
	Kind      pgtype.Text `json:"kind"`
	Status    pgtype.Text `json:"status"`
	RowLimit  int32       `json:"row_limit"`
	RowOffset int32       `json:"row_offset"`
}

func (q *Queries) ListLoans(ctx context.Context, arg ListLoansParams) ([]Loan, error) {
	rows, err := q.db.Query(ctx, listLoans,
		arg.OwnerID,
		arg.Kind,
		arg.Status,
		arg.RowLimit,
		arg.RowOffset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Loan{}
	for rows.Next() {
		var i Loan
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Kind,
			&i.CounterpartyName,
			&i.Principal,
			&i.OutstandingAmount,
			&i.WalletID,
			&i.StartDate,
			&i.DueDate,
			&i.Status,
			&i.Note,
			&i.DeletedAt,
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

const loanStats = `-- name: LoanStats :many
SELECT kind,
       COUNT(*) FILTER (WHERE status = 'open') AS open_count,
       COALESCE(SUM(outstanding_amount) FILTER (WHERE status = 'open'), 0)::NUMERIC(18, 2) AS open_total,
       COUNT(*) AS total
FROM loans
WHERE owner_id = $1 AND deleted_at IS NULL
GROUP BY kind
`

type LoanStatsRow struct {
	Kind      string         `json:"kind"`
	OpenCount int64          `json:"open_count"`
	OpenTotal pgtype.Numeric `json:"open_total"`
	Total     int64          `json:"total"`
}

func (q *Queries) LoanStats(ctx context.Context, ownerID string) ([]LoanStatsRow, error) {
	rows, err := q.db.Query(ctx, loanStats, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LoanStatsRow{}
	for rows.Next() {
		var i LoanStatsRow
		if err := rows.Scan(
			&i.Kind,
			&i.OpenCount,
			&i.OpenTotal,
			&i.Total,
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

const softDeleteLoan = `-- name: SoftDeleteLoan :execrows
UPDATE loans SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL
`

type SoftDeleteLoanParams struct {
	ID        string             `json:"id"`
	DeletedAt pgtype.Timestamptz `json:"deleted_at"`
}

func (q *Queries) SoftDeleteLoan(ctx context.Context, arg SoftDeleteLoanParams) (int64, error) {
	result, err := q.db.Exec(ctx, softDeleteLoan, arg.ID, arg.DeletedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateLoanOutstanding = `-- name: UpdateLoanOutstanding :execrows
UPDATE loans
SET outstanding_amount = $2, status = $3, updated_at = $4
WHERE id = $1
`

type UpdateLoanOutstandingParams struct {
	ID                string             `json:"id"`
	OutstandingAmount pgtype.Numeric     `json:"outstanding_amount"`
	Status            string             `json:"status"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateLoanOutstanding(ctx context.Context, arg UpdateLoanOutstandingParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateLoanOutstanding, arg.ID, arg.OutstandingAmount, arg.Status, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
