package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
	"github.com/iho/pocketledger/internal/usecase/mocks"
)

const (
	testOwner  = "owner-1"
	otherOwner = "owner-2"
)

type ledgerFixture struct {
	store        *mocks.MemoryStore
	ids          *mocks.SequenceIDGenerator
	transactions *usecase.TransactionUseCase
	loans        *usecase.LoanUseCase
	wallets      *usecase.WalletUseCase
	categories   *usecase.CategoryUseCase
	reconcile    *usecase.ReconciliationUseCase
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	store := mocks.NewMemoryStore()
	ids := mocks.NewSequenceIDGenerator("id")

	transactions := usecase.NewTransactionUseCase(
		store,
		store.Wallets(),
		store.Categories(),
		store.Transactions(),
		store.Entries(),
		store.Outbox(),
		ids,
	)

	return &ledgerFixture{
		store:        store,
		ids:          ids,
		transactions: transactions,
		loans:        usecase.NewLoanUseCase(transactions, store.Loans(), store.Payments()),
		wallets:      usecase.NewWalletUseCase(store, store.Wallets(), store.Outbox(), ids),
		categories:   usecase.NewCategoryUseCase(store.Categories(), ids),
		reconcile:    usecase.NewReconciliationUseCase(store.Wallets(), store.Entries(), store.Ledger()),
	}
}

func (f *ledgerFixture) wallet(t *testing.T, id, balance string) {
	t.Helper()
	f.walletFor(t, testOwner, id, balance)
}

func (f *ledgerFixture) walletFor(t *testing.T, ownerID, id, balance string) {
	t.Helper()

	opening := domain.MustParseMoney(balance)
	now := time.Now().UTC()
	f.store.SeedWallet(domain.Wallet{
		ID:             id,
		OwnerID:        ownerID,
		Name:           "Wallet " + id,
		Kind:           domain.WalletKindBank,
		OpeningBalance: opening,
		CurrentBalance: opening,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (f *ledgerFixture) category(t *testing.T, id, name string, txType domain.TransactionType) {
	t.Helper()

	f.store.SeedCategory(domain.Category{
		ID:        id,
		OwnerID:   testOwner,
		Name:      name,
		Type:      txType,
		CreatedAt: time.Now().UTC(),
	})
}

func (f *ledgerFixture) balance(id string) string {
	return f.store.Wallet(id).CurrentBalance.String()
}

func (f *ledgerFixture) expense(t *testing.T, walletID, amount string) *domain.Transaction {
	t.Helper()

	txn, err := f.transactions.CreateTransaction(context.Background(), usecase.CreateTransactionInput{
		OwnerID:    testOwner,
		Type:       domain.TransactionTypeExpense,
		WalletID:   walletID,
		CategoryID: "cat-expense",
		Amount:     domain.MustParseMoney(amount),
	})
	if err != nil {
		t.Fatalf("expense %s from %s: %v", amount, walletID, err)
	}
	return txn
}

// assertReconciled checks that every wallet of the owner equals opening balance plus its entries
// and every loan's outstanding amount matches its payments.
func (f *ledgerFixture) assertReconciled(t *testing.T) {
	t.Helper()

	report, err := f.reconcile.CheckConsistency(context.Background(), testOwner)
	if err != nil {
		t.Fatalf("CheckConsistency: %v", err)
	}
	if !report.Consistent {
		t.Fatalf("ledger drifted: wallets=%+v loans=%+v", report.Wallets, report.Loans)
	}
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error %v, got nil", target)
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected error %v, got %v", target, err)
	}
}
