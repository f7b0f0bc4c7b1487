package postgres

import (
	"context"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// WalletDrift lists wallets whose stored balance differs from opening balance plus live entries.
func (r *LedgerRepository) WalletDrift(ctx context.Context, ownerID string) ([]domain.WalletDrift, error) {
	rows, err := r.queries.WalletDrift(ctx, ownerID)
	if err != nil {
		return nil, mapError("wallet drift", err)
	}

	drift := make([]domain.WalletDrift, 0, len(rows))
	for _, row := range rows {
		drift = append(drift, domain.WalletDrift{
			WalletID: row.ID,
			Recorded: numericToMoney(row.CurrentBalance),
			Computed: numericToMoney(row.Computed),
		})
	}

	return drift, nil
}

// LoanDrift lists loans whose outstanding amount or status disagrees with their payments.
func (r *LedgerRepository) LoanDrift(ctx context.Context, ownerID string) ([]domain.LoanDrift, error) {
	rows, err := r.queries.LoanDrift(ctx, ownerID)
	if err != nil {
		return nil, mapError("loan drift", err)
	}

	drift := make([]domain.LoanDrift, 0, len(rows))
	for _, row := range rows {
		drift = append(drift, domain.LoanDrift{
			LoanID:      row.ID,
			Outstanding: numericToMoney(row.OutstandingAmount),
			Expected:    numericToMoney(row.Expected),
			Status:      domain.LoanStatus(row.Status),
		})
	}

	return drift, nil
}
