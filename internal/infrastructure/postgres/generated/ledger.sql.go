package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const loanDrift = `-- name: LoanDrift :many
SELECT l.id,
       l.outstanding_amount,
       GREATEST(l.principal - COALESCE(p.paid, 0), 0)::NUMERIC(18, 2) AS expected,
       l.status
FROM loans l
LEFT JOIN (
    SELECT loan_id, SUM(amount) AS paid FROM loan_payments GROUP BY loan_id
) p ON p.loan_id = l.id
WHERE l.owner_id = $1
  AND l.deleted_at IS NULL
  AND (l.outstanding_amount <> GREATEST(l.principal - COALESCE(p.paid, 0), 0)
       OR (l.status = 'closed') <> (l.outstanding_amount = 0))
ORDER BY l.id
`

type LoanDriftRow struct {
	ID                string         `json:"id"`
	OutstandingAmount pgtype.Numeric `json:"outstanding_amount"`
	Expected          pgtype.Numeric `json:"expected"`
	Status            string         `json:"status"`
}

func (q *Queries) LoanDrift(ctx context.Context, ownerID string) ([]LoanDriftRow, error) {
	rows, err := q.db.Query(ctx, loanDrift, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LoanDriftRow{}
	for rows.Next() {
		var i LoanDriftRow
		if err := rows.Scan(
			&i.ID,
			&i.OutstandingAmount,
			&i.Expected,
			&i.Status,
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

const walletDrift = `-- name: WalletDrift :many
SELECT w.id,
       w.current_balance,
       (w.opening_balance + COALESCE(s.total, 0))::NUMERIC(18, 2) AS computed
FROM wallets w
LEFT JOIN (
    SELECT e.wallet_id, SUM(CASE WHEN e.direction = 'in' THEN e.amount ELSE -e.amount END) AS total
    FROM transaction_entries e
    JOIN transactions t ON t.id = e.transaction_id
    WHERE t.deleted_at IS NULL AND t.owner_id = $1
    GROUP BY e.wallet_id
) s ON s.wallet_id = w.id
WHERE w.owner_id = $1
  AND w.current_balance <> w.opening_balance + COALESCE(s.total, 0)
ORDER BY w.id
`

type WalletDriftRow struct {
	ID             string         `json:"id"`
	CurrentBalance pgtype.Numeric `json:"current_balance"`
	Computed       pgtype.Numeric `json:"computed"`
}

func (q *Queries) WalletDrift(ctx context.Context, ownerID string) ([]WalletDriftRow, error) {
	rows, err := q.db.Query(ctx, walletDrift, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []WalletDriftRow{}
	for rows.Next() {
		var i WalletDriftRow
		if err := rows.Scan(
			&i.ID,
			&i.CurrentBalance,
			&i.Computed,
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
