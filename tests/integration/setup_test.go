package integration

import (
	"context"
	"testing"

	"github.com/iho/pocketledger/internal/adapter/repository/postgres"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
	"github.com/iho/pocketledger/tests/testutil"
)

const owner = "owner-integration"

type ledgerEnv struct {
	db           *testutil.TestDB
	outbox       *postgres.OutboxRepository
	wallets      *usecase.WalletUseCase
	categories   *usecase.CategoryUseCase
	transactions *usecase.TransactionUseCase
	loans        *usecase.LoanUseCase
	ledger       *usecase.ReconciliationUseCase
	users        *usecase.UserUseCase
}

func newLedgerEnv(t *testing.T) *ledgerEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.NewTestDB(t)
	db.TruncateAll(context.Background())

	pool := db.Pool
	txManager := postgres.NewTxManager(pool)
	walletRepo := postgres.NewWalletRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	idGen := postgres.NewULIDGenerator()

	transactions := usecase.NewTransactionUseCase(
		txManager,
		walletRepo,
		categoryRepo,
		postgres.NewTransactionRepository(pool),
		entryRepo,
		outboxRepo,
		idGen,
	).WithRetrier(postgres.NewRetrier())

	return &ledgerEnv{
		db:           db,
		outbox:       outboxRepo,
		wallets:      usecase.NewWalletUseCase(txManager, walletRepo, outboxRepo, idGen),
		categories:   usecase.NewCategoryUseCase(categoryRepo, idGen),
		transactions: transactions,
		loans: usecase.NewLoanUseCase(transactions, postgres.NewLoanRepository(pool), postgres.NewLoanPaymentRepository(pool)).
			WithDefaultCategory("Loans"),
		ledger: usecase.NewReconciliationUseCase(walletRepo, entryRepo, postgres.NewLedgerRepository(pool)),
		users:  usecase.NewUserUseCase(postgres.NewUserRepository(pool), idGen),
	}
}

func (e *ledgerEnv) wallet(t *testing.T, name, opening string) *domain.Wallet {
	t.Helper()

	w, err := e.wallets.CreateWallet(context.Background(), usecase.CreateWalletInput{
		OwnerID:        owner,
		Name:           name,
		Kind:           domain.WalletKindBank,
		OpeningBalance: domain.MustParseMoney(opening),
	})
	if err != nil {
		t.Fatalf("CreateWallet: %v", err)
	}
	return w
}

func (e *ledgerEnv) category(t *testing.T, name string, typ domain.TransactionType) *domain.Category {
	t.Helper()

	c, err := e.categories.CreateCategory(context.Background(), usecase.CreateCategoryInput{OwnerID: owner, Name: name, Type: typ})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

func (e *ledgerEnv) balance(t *testing.T, walletID string) string {
	t.Helper()

	w, err := e.wallets.GetWallet(context.Background(), owner, walletID)
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	return w.CurrentBalance.String()
}

func (e *ledgerEnv) assertConsistent(t *testing.T) {
	t.Helper()

	report, err := e.ledger.CheckConsistency(context.Background(), owner)
	if err != nil {
		t.Fatalf("CheckConsistency: %v", err)
	}
	if !report.Consistent {
		t.Fatalf("ledger drifted: wallets=%+v loans=%+v", report.Wallets, report.Loans)
	}
}
