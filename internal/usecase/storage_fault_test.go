package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
	"github.com/iho/pocketledger/internal/usecase/mocks"
)

type faultMocks struct {
	txManager    *mocks.MockTransactionManager
	tx           *mocks.MockTransaction
	wallets      *mocks.MockWalletRepository
	categories   *mocks.MockCategoryRepository
	transactions *mocks.MockTransactionRepository
	entries      *mocks.MockEntryRepository
	outbox       *mocks.MockOutboxRepository
	ids          *mocks.MockIDGenerator
}

func newFaultMocks(ctrl *gomock.Controller) *faultMocks {
	m := &faultMocks{
		txManager:    mocks.NewMockTransactionManager(ctrl),
		tx:           mocks.NewMockTransaction(ctrl),
		wallets:      mocks.NewMockWalletRepository(ctrl),
		categories:   mocks.NewMockCategoryRepository(ctrl),
		transactions: mocks.NewMockTransactionRepository(ctrl),
		entries:      mocks.NewMockEntryRepository(ctrl),
		outbox:       mocks.NewMockOutboxRepository(ctrl),
		ids:          mocks.NewMockIDGenerator(ctrl),
	}
	m.ids.EXPECT().Generate().Return("id").AnyTimes()
	return m
}

func (m *faultMocks) useCase() *usecase.TransactionUseCase {
	return usecase.NewTransactionUseCase(m.txManager, m.wallets, m.categories, m.transactions, m.entries, m.outbox, m.ids)
}

func (m *faultMocks) expectPrechecks() {
	m.categories.EXPECT().GetByID(gomock.Any(), "cat-1").Return(&domain.Category{
		ID:      "cat-1",
		OwnerID: testOwner,
		Name:    "Food",
		Type:    domain.TransactionTypeExpense,
	}, nil)
	m.wallets.EXPECT().GetByID(gomock.Any(), "w-1").Return(&domain.Wallet{
		ID:             "w-1",
		OwnerID:        testOwner,
		CurrentBalance: domain.MustParseMoney("100"),
	}, nil)
}

func (m *faultMocks) expectLockedWallet(balance string) *gomock.Call {
	return m.wallets.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, []string{"w-1"}).Return([]*domain.Wallet{
		{ID: "w-1", OwnerID: testOwner, CurrentBalance: domain.MustParseMoney(balance)},
	}, nil)
}

func expenseInput() usecase.CreateTransactionInput {
	return usecase.CreateTransactionInput{
		OwnerID:    testOwner,
		Type:       domain.TransactionTypeExpense,
		WalletID:   "w-1",
		CategoryID: "cat-1",
		Amount:     domain.MustParseMoney("40"),
	}
}

func TestTransactionUseCase_StorageFaults(t *testing.T) {
	storageErr := &domain.StorageError{Op: "insert", Err: errors.New("connection reset")}

	tests := []struct {
		name  string
		setup func(m *faultMocks)
	}{
		{
			name: "begin fails",
			setup: func(m *faultMocks) {
				m.txManager.EXPECT().Begin(gomock.Any()).Return(nil, storageErr)
			},
		},
		{
			name: "entry insert fails",
			setup: func(m *faultMocks) {
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.expectLockedWallet("100")
				m.wallets.EXPECT().UpdateBalance(gomock.Any(), m.tx, "w-1", domain.MustParseMoney("60"), gomock.Any()).Return(nil)
				m.transactions.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
				m.entries.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(storageErr)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
		},
		{
			name: "balance update fails",
			setup: func(m *faultMocks) {
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.expectLockedWallet("100")
				m.wallets.EXPECT().UpdateBalance(gomock.Any(), m.tx, "w-1", domain.MustParseMoney("60"), gomock.Any()).Return(storageErr)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
		},
		{
			name: "commit fails",
			setup: func(m *faultMocks) {
				m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
				m.expectLockedWallet("100")
				m.wallets.EXPECT().UpdateBalance(gomock.Any(), m.tx, "w-1", domain.MustParseMoney("60"), gomock.Any()).Return(nil)
				m.transactions.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
				m.entries.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
				m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
				m.tx.EXPECT().Commit(gomock.Any()).Return(storageErr)
				m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := newFaultMocks(ctrl)
			m.expectPrechecks()
			tt.setup(m)

			txn, err := m.useCase().CreateTransaction(context.Background(), expenseInput())
			if txn != nil {
				t.Fatal("expected no transaction on failure")
			}
			assertErrorIs(t, err, domain.ErrStorage)
			if domain.KindOf(err) != domain.KindStorage {
				t.Fatalf("kind = %s, want storage", domain.KindOf(err))
			}
		})
	}
}

func TestTransactionUseCase_LockedBalanceWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newFaultMocks(ctrl)
	m.expectPrechecks()

	// a concurrent writer drained the wallet between precheck and lock
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.expectLockedWallet("10")
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	_, err := m.useCase().CreateTransaction(context.Background(), expenseInput())
	assertErrorIs(t, err, domain.ErrInsufficientBalance)

	var insufficient *domain.InsufficientBalanceError
	if !errors.As(err, &insufficient) || insufficient.Balance.String() != "10.00" {
		t.Fatalf("expected locked balance in error, got %v", err)
	}
}

func TestTransactionUseCase_CancelledCallerStillCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newFaultMocks(ctrl)
	m.expectPrechecks()

	ctx, cancel := context.WithCancel(context.Background())

	m.txManager.EXPECT().Begin(gomock.Any()).DoAndReturn(func(ctx context.Context) (usecase.Transaction, error) {
		cancel()
		return m.tx, nil
	})
	m.expectLockedWallet("100")
	m.wallets.EXPECT().UpdateBalance(gomock.Any(), m.tx, "w-1", domain.MustParseMoney("60"), gomock.Any()).Return(nil)
	m.transactions.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.entries.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			t.Errorf("unit of work context cancelled with caller: %v", err)
		}
		return nil
	})
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	if _, err := m.useCase().CreateTransaction(ctx, expenseInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionUseCase_RetrierWrapsUnitOfWork(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newFaultMocks(ctrl)
	m.expectPrechecks()
	retrier := mocks.NewMockRetrier(ctrl)

	deadlock := &domain.StorageError{Op: "update wallet balance", Err: errors.New("deadlock detected")}

	// the first attempt deadlocks on the balance update, the second commits
	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, op func() error) error {
		if err := op(); !errors.Is(err, domain.ErrStorage) {
			t.Fatalf("first attempt: expected deadlock, got %v", err)
		}
		return op()
	})

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).Times(2)
	m.transactions.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.entries.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.wallets.EXPECT().GetByIDsForUpdate(gomock.Any(), m.tx, []string{"w-1"}).DoAndReturn(
		func(context.Context, usecase.Transaction, []string) ([]*domain.Wallet, error) {
			return []*domain.Wallet{{ID: "w-1", OwnerID: testOwner, CurrentBalance: domain.MustParseMoney("100")}}, nil
		}).Times(2)
	gomock.InOrder(
		m.wallets.EXPECT().UpdateBalance(gomock.Any(), m.tx, "w-1", domain.MustParseMoney("60"), gomock.Any()).Return(deadlock),
		m.wallets.EXPECT().UpdateBalance(gomock.Any(), m.tx, "w-1", domain.MustParseMoney("60"), gomock.Any()).Return(nil),
	)
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	txn, err := m.useCase().WithRetrier(retrier).CreateTransaction(context.Background(), expenseInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn == nil || txn.Amount.String() != "40.00" {
		t.Fatalf("unexpected transaction: %+v", txn)
	}
}

func TestTransactionUseCase_LocksWalletsBeforeInserting(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newFaultMocks(ctrl)
	m.expectPrechecks()

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	gomock.InOrder(
		m.expectLockedWallet("100"),
		m.wallets.EXPECT().UpdateBalance(gomock.Any(), m.tx, "w-1", domain.MustParseMoney("60"), gomock.Any()).Return(nil),
		m.transactions.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil),
		m.entries.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil),
	)
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	if _, err := m.useCase().CreateTransaction(context.Background(), expenseInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
