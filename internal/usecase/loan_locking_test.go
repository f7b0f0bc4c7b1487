package usecase_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
	"github.com/iho/pocketledger/internal/usecase/mocks"
)

type loanMocks struct {
	*faultMocks
	loans    *mocks.MockLoanRepository
	payments *mocks.MockLoanPaymentRepository
}

func newLoanMocks(ctrl *gomock.Controller) *loanMocks {
	m := &loanMocks{
		faultMocks: newFaultMocks(ctrl),
		loans:      mocks.NewMockLoanRepository(ctrl),
		payments:   mocks.NewMockLoanPaymentRepository(ctrl),
	}
	m.categories.EXPECT().FindByName(gomock.Any(), testOwner, gomock.Any(), usecase.DefaultLoanCategoryName).
		Return(nil, domain.ErrCategoryInvalid).AnyTimes()
	m.wallets.EXPECT().GetByID(gomock.Any(), "w-1").Return(&domain.Wallet{
		ID:             "w-1",
		OwnerID:        testOwner,
		CurrentBalance: domain.MustParseMoney("100"),
	}, nil).AnyTimes()
	return m
}

func (m *loanMocks) useCase() *usecase.LoanUseCase {
	return usecase.NewLoanUseCase(m.faultMocks.useCase(), m.loans, m.payments)
}

func TestLoanUseCase_CreateLoanLocksWalletBeforeInserting(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newLoanMocks(ctrl)

	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	gomock.InOrder(
		m.expectLockedWallet("100"),
		m.wallets.EXPECT().UpdateBalance(gomock.Any(), m.tx, "w-1", domain.MustParseMoney("150"), gomock.Any()).Return(nil),
		m.loans.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil),
		m.transactions.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil),
		m.entries.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil),
	)
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	loan, err := m.useCase().CreateLoan(context.Background(), usecase.CreateLoanInput{
		OwnerID:          testOwner,
		Kind:             domain.LoanKindYouOwe,
		CounterpartyName: "Bob",
		Principal:        domain.MustParseMoney("50"),
		WalletID:         "w-1",
	})
	if err != nil {
		t.Fatalf("CreateLoan: %v", err)
	}
	if loan.OutstandingAmount.String() != "50.00" {
		t.Fatalf("outstanding = %s, want 50.00", loan.OutstandingAmount)
	}
}

func TestLoanUseCase_PaymentStampedUnderLoanLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newLoanMocks(ctrl)

	open := func() *domain.Loan {
		return &domain.Loan{
			ID:                "loan-1",
			OwnerID:           testOwner,
			Kind:              domain.LoanKindYouOwe,
			CounterpartyName:  "Bob",
			Principal:         domain.MustParseMoney("60"),
			OutstandingAmount: domain.MustParseMoney("60"),
			WalletID:          "w-1",
			Status:            domain.LoanStatusOpen,
		}
	}

	var lockedAt time.Time
	var stamps []time.Time

	m.loans.EXPECT().GetByID(gomock.Any(), "loan-1").Return(open(), nil)
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.loans.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "loan-1").DoAndReturn(
		func(context.Context, usecase.Transaction, string) (*domain.Loan, error) {
			// a competing payment held the lock for a while
			time.Sleep(5 * time.Millisecond)
			lockedAt = time.Now()
			return open(), nil
		})
	m.expectLockedWallet("100")
	m.wallets.EXPECT().UpdateBalance(gomock.Any(), m.tx, "w-1", domain.MustParseMoney("40"), gomock.Any()).Return(nil)
	m.transactions.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.entries.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.payments.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Transaction, p *domain.LoanPayment) error {
			stamps = append(stamps, p.CreatedAt, p.PaymentDate)
			return nil
		})
	m.loans.EXPECT().UpdateOutstanding(gomock.Any(), m.tx, "loan-1", domain.MustParseMoney("0"), domain.LoanStatusClosed, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Transaction, _ string, _ domain.Money, _ domain.LoanStatus, updatedAt time.Time) error {
			stamps = append(stamps, updatedAt)
			return nil
		})
	m.outbox.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Transaction, e *domain.OutboxEvent) error {
			if e.AggregateType == domain.AggregateTypeLoan {
				stamps = append(stamps, e.CreatedAt)
			}
			return nil
		}).Times(3)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	_, err := m.useCase().CreateLoanPayment(context.Background(), usecase.CreateLoanPaymentInput{
		OwnerID:  testOwner,
		LoanID:   "loan-1",
		WalletID: "w-1",
		Amount:   domain.MustParseMoney("60"),
	})
	if err != nil {
		t.Fatalf("CreateLoanPayment: %v", err)
	}

	// payment row, payment date, loan update, payment_created and closed events
	if len(stamps) != 5 {
		t.Fatalf("stamps = %d, want 5", len(stamps))
	}
	for i, ts := range stamps {
		if ts.Before(lockedAt) {
			t.Errorf("stamp %d = %s precedes the loan lock at %s", i, ts, lockedAt)
		}
	}
}
