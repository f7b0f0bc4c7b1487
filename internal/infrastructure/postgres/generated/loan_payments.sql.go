package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countLoanPayments = `-- name: CountLoanPayments :one
SELECT COUNT(*) FROM loan_payments WHERE loan_id = $1
`

func (q *Queries) CountLoanPayments(ctx context.Context, loanID string) (int64, error) {
	row := q.db.QueryRow(ctx, countLoanPayments, loanID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createLoanPayment = `-- name: CreateLoanPayment :exec
INSERT INTO loan_payments (id, loan_id, owner_id, wallet_id, transaction_id, payment_date, amount, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateLoanPaymentParams struct {
	ID            string             `json:"id"`
	LoanID        string             `json:"loan_id"`
	OwnerID       string             `json:"owner_id"`
	WalletID      string             `json:"wallet_id"`
	TransactionID string             `json:"transaction_id"`
	PaymentDate   pgtype.Timestamptz `json:"payment_date"`
	Amount        pgtype.Numeric     `json:"amount"`
	Note          string             `json:"note"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateLoanPayment(ctx context.Context, arg CreateLoanPaymentParams) error {
	_, err := q.db.Exec(ctx, createLoanPayment,
		arg.ID,
		arg.LoanID,
		arg.OwnerID,
		arg.WalletID,
		arg.TransactionID,
		arg.PaymentDate,
		arg.Amount,
		arg.Note,
		arg.CreatedAt,
	)
	return err
}

const listLoanPaymentsByLoan = `-- name: ListLoanPaymentsByLoan :many
SELECT id, loan_id, owner_id, wallet_id, transaction_id, payment_date, amount, note, created_at FROM loan_payments
WHERE loan_id = $1
ORDER BY payment_date, created_at, id
`

func (q *Queries) ListLoanPaymentsByLoan(ctx context.Context, loanID string) ([]LoanPayment, error) {
	rows, err := q.db.Query(ctx, listLoanPaymentsByLoan, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LoanPayment{}
	for rows.Next() {
		var i LoanPayment
		if err := rows.Scan(
			&i.ID,
			&i.LoanID,
			&i.OwnerID,
			&i.WalletID,
			&i.TransactionID,
			&i.PaymentDate,
			&i.Amount,
			&i.Note,
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
