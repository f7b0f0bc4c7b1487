package usecase

import (
	"context"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

// ReconciliationUseCase recomputes balances and loan state from the ledger.
type ReconciliationUseCase struct {
	walletRepo WalletRepository
	entryRepo  EntryRepository
	ledgerRepo LedgerRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	walletRepo WalletRepository,
	entryRepo EntryRepository,
	ledgerRepo LedgerRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		walletRepo: walletRepo,
		entryRepo:  entryRepo,
		ledgerRepo: ledgerRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	WalletID          string
	RecordedBalance   domain.Money
	CalculatedBalance domain.Money
	Difference        domain.Money
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileWallet compares the stored balance with opening balance plus the signed
// sum of non-deleted entries.
func (uc *ReconciliationUseCase) ReconcileWallet(ctx context.Context, ownerID, walletID string) (*ReconciliationResult, error) {
	wallet, err := uc.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	if err := wallet.CheckOwner(ownerID); err != nil {
		return nil, err
	}

	sum, err := uc.entryRepo.SumByWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	calculated := wallet.OpeningBalance.Add(sum)

	return &ReconciliationResult{
		WalletID:          walletID,
		RecordedBalance:   wallet.CurrentBalance,
		CalculatedBalance: calculated,
		Difference:        wallet.CurrentBalance.Sub(calculated),
		IsReconciled:      wallet.CurrentBalance.Equal(calculated),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// CheckConsistency checks every wallet and loan of the owner in two set-based queries.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context, ownerID string) (*domain.ConsistencyReport, error) {
	wallets, err := uc.ledgerRepo.WalletDrift(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	loans, err := uc.ledgerRepo.LoanDrift(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if wallets == nil {
		wallets = []domain.WalletDrift{}
	}
	if loans == nil {
		loans = []domain.LoanDrift{}
	}

	return &domain.ConsistencyReport{
		OwnerID:    ownerID,
		Wallets:    wallets,
		Loans:      loans,
		Consistent: len(wallets) == 0 && len(loans) == 0,
		CheckedAt:  time.Now().UTC(),
	}, nil
}
