package postgres

import (
	"context"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/postgres/generated"
	"github.com/iho/pocketledger/internal/usecase"
)

// LoanPaymentRepository implements usecase.LoanPaymentRepository.
type LoanPaymentRepository struct {
	queries *generated.Queries
}

// NewLoanPaymentRepository creates a new LoanPaymentRepository.
func NewLoanPaymentRepository(db generated.DBTX) *LoanPaymentRepository {
	return &LoanPaymentRepository{queries: generated.New(db)}
}

func (r *LoanPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.LoanPayment) error {
	err := queriesFor(tx).CreateLoanPayment(ctx, generated.CreateLoanPaymentParams{
		ID:            payment.ID,
		LoanID:        payment.LoanID,
		OwnerID:       payment.OwnerID,
		WalletID:      payment.WalletID,
		TransactionID: payment.TransactionID,
		PaymentDate:   timeToPgTimestamptz(payment.PaymentDate),
		Amount:        moneyToNumeric(payment.Amount),
		Note:          payment.Note,
		CreatedAt:     timeToPgTimestamptz(payment.CreatedAt),
	})

	return mapError("create loan payment", err)
}

func (r *LoanPaymentRepository) CountByLoanTx(ctx context.Context, tx usecase.Transaction, loanID string) (int64, error) {
	n, err := queriesFor(tx).CountLoanPayments(ctx, loanID)
	return n, mapError("count loan payments", err)
}

func (r *LoanPaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.LoanPayment, error) {
	rows, err := r.queries.ListLoanPaymentsByLoan(ctx, loanID)
	if err != nil {
		return nil, mapError("list loan payments", err)
	}

	payments := make([]*domain.LoanPayment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, &domain.LoanPayment{
			ID:            row.ID,
			LoanID:        row.LoanID,
			OwnerID:       row.OwnerID,
			WalletID:      row.WalletID,
			TransactionID: row.TransactionID,
			PaymentDate:   row.PaymentDate.Time,
			Amount:        numericToMoney(row.Amount),
			Note:          row.Note,
			CreatedAt:     row.CreatedAt.Time,
		})
	}

	return payments, nil
}
