package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/domain"
)

// LoanUseCase models debt disbursement and repayment on top of the transaction processor.
type LoanUseCase struct {
	transactions *TransactionUseCase
	loanRepo     LoanRepository
	paymentRepo  LoanPaymentRepository
	cache        Cache
	statsTTL     time.Duration
	categoryName string
}

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(transactions *TransactionUseCase, loanRepo LoanRepository, paymentRepo LoanPaymentRepository) *LoanUseCase {
	return &LoanUseCase{
		transactions: transactions,
		loanRepo:     loanRepo,
		paymentRepo:  paymentRepo,
		statsTTL:     DefaultStatsCacheTTL,
		categoryName: DefaultLoanCategoryName,
	}
}

// WithStatsCache caches loan stats per owner for ttl.
func (uc *LoanUseCase) WithStatsCache(cache Cache, ttl time.Duration) *LoanUseCase {
	uc.cache = cache
	if ttl > 0 {
		uc.statsTTL = ttl
	}
	return uc
}

// WithDefaultCategory sets the reserved category name attached to loan transactions.
func (uc *LoanUseCase) WithDefaultCategory(name string) *LoanUseCase {
	if name != "" {
		uc.categoryName = name
	}
	return uc
}

// CreateLoanInput represents input for opening a loan.
type CreateLoanInput struct {
	OwnerID          string
	Kind             domain.LoanKind
	CounterpartyName string
	Principal        domain.Money
	WalletID         string
	StartDate        time.Time
	DueDate          *time.Time
	Note             string
}

// CreateLoan opens a loan and posts its disbursement transaction in one unit of work.
func (uc *LoanUseCase) CreateLoan(ctx context.Context, input CreateLoanInput) (loan *domain.Loan, err error) {
	start := time.Now()
	defer func() { observe(uc.transactions.metrics, "create_loan", start, err) }()

	now := start.UTC()
	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = now
	}

	loan = &domain.Loan{
		OwnerID:           input.OwnerID,
		Kind:              input.Kind,
		CounterpartyName:  input.CounterpartyName,
		Principal:         input.Principal,
		OutstandingAmount: input.Principal,
		WalletID:          input.WalletID,
		StartDate:         startDate,
		DueDate:           input.DueDate,
		Status:            domain.LoanStatusOpen,
		Note:              input.Note,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := loan.Validate(); err != nil {
		return nil, err
	}
	if input.WalletID == "" {
		return nil, domain.NewValidationError(domain.ErrInvalidInput, "wallet_id", "is required")
	}

	txType := loan.Kind.DisbursementType()
	direction := domain.DirectionFor(txType)

	if err := uc.transactions.precheckWallet(ctx, input.OwnerID, input.WalletID, direction, input.Principal); err != nil {
		return nil, err
	}

	categoryID, err := uc.defaultCategory(ctx, input.OwnerID, txType)
	if err != nil {
		return nil, err
	}

	loan.ID = uc.transactions.idGen.Generate()
	txn := uc.transactions.newTransaction(
		input.OwnerID,
		txType,
		input.Principal,
		startDate,
		categoryID,
		loan.Note,
		&loan.ID,
		[]domain.Entry{{WalletID: input.WalletID, Direction: direction, Amount: input.Principal}},
	)

	err = uc.transactions.unitOfWork(ctx, func(ctx context.Context, tx Transaction) error {
		// the disbursement references the loan, the loan references the locked wallet
		if _, err := uc.transactions.projector.ApplyDeltas(ctx, tx, loan.OwnerID, txn.Deltas()...); err != nil {
			return err
		}

		if err := uc.loanRepo.Create(ctx, tx, loan); err != nil {
			return err
		}

		if err := uc.transactions.record(ctx, tx, txn); err != nil {
			return err
		}

		if err := uc.transactions.outboxRepo.Create(ctx, tx, uc.transactions.createdEvent(txn)); err != nil {
			return err
		}

		return uc.transactions.outboxRepo.Create(ctx, tx, newOutboxEvent(
			uc.transactions.idGen.Generate(),
			domain.AggregateTypeLoan,
			loan.ID,
			domain.EventTypeLoanCreated,
			map[string]any{
				"loan_id":        loan.ID,
				"owner_id":       loan.OwnerID,
				"kind":           string(loan.Kind),
				"principal":      loan.Principal.String(),
				"wallet_id":      loan.WalletID,
				"transaction_id": txn.ID,
			},
			now,
		))
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateStats(ctx, loan.OwnerID)
	if m := uc.transactions.metrics; m != nil {
		m.LoansCreated.WithLabelValues(string(loan.Kind)).Inc()
	}

	return loan, nil
}

// CreateLoanPaymentInput represents input for repaying a loan.
type CreateLoanPaymentInput struct {
	OwnerID     string
	LoanID      string
	WalletID    string
	Amount      domain.Money
	PaymentDate time.Time
	Note        string
}

// CreateLoanPayment posts a repayment and lowers the outstanding amount. The loan row is
// locked before any wallet row.
func (uc *LoanUseCase) CreateLoanPayment(ctx context.Context, input CreateLoanPaymentInput) (payment *domain.LoanPayment, err error) {
	start := time.Now()
	defer func() { observe(uc.transactions.metrics, "create_loan_payment", start, err) }()

	if err := domain.ValidateAmount("amount", input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateNote(input.Note); err != nil {
		return nil, err
	}
	if input.WalletID == "" {
		return nil, domain.NewValidationError(domain.ErrInvalidInput, "wallet_id", "is required")
	}

	// Fast-fail checks outside the unit of work
	loan, err := uc.loanRepo.GetByID(ctx, input.LoanID)
	if err != nil {
		return nil, err
	}
	if err := loan.CheckVisible(input.OwnerID); err != nil {
		return nil, err
	}
	if err := loan.CheckPayable(input.Amount); err != nil {
		return nil, err
	}

	txType := loan.Kind.RepaymentType()
	direction := domain.DirectionFor(txType)

	if err := uc.transactions.precheckWallet(ctx, input.OwnerID, input.WalletID, direction, input.Amount); err != nil {
		return nil, err
	}

	categoryID, err := uc.defaultCategory(ctx, input.OwnerID, txType)
	if err != nil {
		return nil, err
	}

	var closed bool
	err = uc.transactions.unitOfWork(ctx, func(ctx context.Context, tx Transaction) error {
		locked, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, input.LoanID)
		if err != nil {
			return err
		}

		// stamped under the loan lock so the loan's events sort in commit order
		now := time.Now().UTC()
		paymentDate := input.PaymentDate
		if paymentDate.IsZero() {
			paymentDate = now
		}
		if err := locked.CheckVisible(input.OwnerID); err != nil {
			return err
		}
		if err := locked.CheckPayable(input.Amount); err != nil {
			return err
		}

		txn := uc.transactions.newTransaction(
			input.OwnerID,
			txType,
			input.Amount,
			paymentDate,
			categoryID,
			input.Note,
			nil,
			[]domain.Entry{{WalletID: input.WalletID, Direction: direction, Amount: input.Amount}},
		)
		if err := uc.transactions.post(ctx, tx, txn); err != nil {
			return err
		}

		payment = &domain.LoanPayment{
			ID:            uc.transactions.idGen.Generate(),
			LoanID:        locked.ID,
			OwnerID:       input.OwnerID,
			WalletID:      input.WalletID,
			TransactionID: txn.ID,
			PaymentDate:   paymentDate,
			Amount:        input.Amount,
			Note:          input.Note,
			CreatedAt:     now,
		}
		if err := uc.paymentRepo.Create(ctx, tx, payment); err != nil {
			return err
		}

		locked.ApplyPayment(input.Amount)
		if err := uc.loanRepo.UpdateOutstanding(ctx, tx, locked.ID, locked.OutstandingAmount, locked.Status, now); err != nil {
			return err
		}
		closed = locked.Status == domain.LoanStatusClosed

		if err := uc.transactions.outboxRepo.Create(ctx, tx, uc.transactions.createdEvent(txn)); err != nil {
			return err
		}

		if err := uc.transactions.outboxRepo.Create(ctx, tx, newOutboxEvent(
			uc.transactions.idGen.Generate(),
			domain.AggregateTypeLoan,
			locked.ID,
			domain.EventTypeLoanPaymentCreated,
			map[string]any{
				"payment_id":     payment.ID,
				"loan_id":        locked.ID,
				"transaction_id": txn.ID,
				"amount":         payment.Amount.String(),
				"outstanding":    locked.OutstandingAmount.String(),
			},
			now,
		)); err != nil {
			return err
		}

		if !closed {
			return nil
		}

		return uc.transactions.outboxRepo.Create(ctx, tx, newOutboxEvent(
			uc.transactions.idGen.Generate(),
			domain.AggregateTypeLoan,
			locked.ID,
			domain.EventTypeLoanClosed,
			map[string]any{
				"loan_id":  locked.ID,
				"owner_id": locked.OwnerID,
			},
			now,
		))
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateStats(ctx, input.OwnerID)
	if m := uc.transactions.metrics; m != nil {
		m.LoanPaymentsCreated.WithLabelValues(string(loan.Kind)).Inc()
		if closed {
			m.LoansClosed.Inc()
		}
	}

	return payment, nil
}

// DeleteLoan soft-deletes a loan without payments and reverts its disbursement.
// When the disbursement is missing or not a single entry, the loan is deleted without
// reversal and the divergence is logged and counted.
func (uc *LoanUseCase) DeleteLoan(ctx context.Context, ownerID, loanID string) (loan *domain.Loan, err error) {
	start := time.Now()
	defer func() { observe(uc.transactions.metrics, "delete_loan", start, err) }()

	var reverted bool
	var fallbackReason string

	err = uc.transactions.unitOfWork(ctx, func(ctx context.Context, tx Transaction) error {
		locked, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if err := locked.CheckVisible(ownerID); err != nil {
			return err
		}

		payments, err := uc.paymentRepo.CountByLoanTx(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if payments > 0 {
			return &domain.LoanHasPaymentsError{LoanID: loanID, Payments: payments}
		}

		now := time.Now().UTC()

		fallbackReason, err = uc.revertDisbursement(ctx, tx, locked, now)
		if err != nil {
			return err
		}
		reverted = fallbackReason == ""

		if err := uc.loanRepo.SoftDelete(ctx, tx, loanID, now); err != nil {
			return err
		}
		locked.DeletedAt = &now
		locked.UpdatedAt = now
		loan = locked

		return uc.transactions.outboxRepo.Create(ctx, tx, newOutboxEvent(
			uc.transactions.idGen.Generate(),
			domain.AggregateTypeLoan,
			loanID,
			domain.EventTypeLoanDeleted,
			map[string]any{
				"loan_id":  loanID,
				"owner_id": ownerID,
				"reverted": reverted,
			},
			now,
		))
	})
	if err != nil {
		return nil, err
	}

	if !reverted {
		zerolog.Ctx(ctx).Warn().
			Str("loan_id", loanID).
			Str("reason", fallbackReason).
			Msg("loan deleted without reverting its disbursement")
	}

	uc.invalidateStats(ctx, ownerID)
	if m := uc.transactions.metrics; m != nil {
		m.LoansDeleted.Inc()
		if !reverted {
			m.LoanDeleteFallback.Inc()
		}
	}

	return loan, nil
}

// revertDisbursement undoes the wallet delta of the loan's originating transaction and
// soft-deletes it. A non-empty reason means the fallback path was taken.
func (uc *LoanUseCase) revertDisbursement(ctx context.Context, tx Transaction, loan *domain.Loan, now time.Time) (string, error) {
	origin, err := uc.transactions.transactionRepo.GetByLoanIDForUpdate(ctx, tx, loan.ID)
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return "originating transaction not found", nil
	}
	if err != nil {
		return "", err
	}

	if origin.IsDeleted() {
		return "originating transaction already deleted", nil
	}

	entries, err := uc.transactions.entryRepo.ListByTransactionTx(ctx, tx, origin.ID)
	if err != nil {
		return "", err
	}
	if len(entries) != 1 {
		return "unexpected entry shape", nil
	}
	origin.Entries = entries

	if _, err := uc.transactions.projector.RevertDeltas(ctx, tx, loan.OwnerID, origin.Deltas()...); err != nil {
		return "", err
	}

	if err := uc.transactions.transactionRepo.SoftDelete(ctx, tx, origin.ID, now); err != nil {
		return "", err
	}

	return "", uc.transactions.outboxRepo.Create(ctx, tx, newOutboxEvent(
		uc.transactions.idGen.Generate(),
		domain.AggregateTypeTransaction,
		origin.ID,
		domain.EventTypeTransactionDeleted,
		map[string]any{
			"transaction_id": origin.ID,
			"owner_id":       loan.OwnerID,
			"reverted":       true,
		},
		now,
	))
}

// GetLoan returns a visible loan.
func (uc *LoanUseCase) GetLoan(ctx context.Context, ownerID, loanID string) (*domain.Loan, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if err := loan.CheckVisible(ownerID); err != nil {
		return nil, err
	}

	return loan, nil
}

// ListLoans returns non-deleted loans, newest first.
func (uc *LoanUseCase) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error) {
	if filter.Kind != nil && !filter.Kind.IsValid() {
		return nil, domain.NewValidationError(domain.ErrInvalidInput, "kind", string(*filter.Kind))
	}

	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	return uc.loanRepo.List(ctx, filter)
}

// ListPayments returns the payments of a visible loan, oldest first.
func (uc *LoanUseCase) ListPayments(ctx context.Context, ownerID, loanID string) ([]*domain.LoanPayment, error) {
	if _, err := uc.GetLoan(ctx, ownerID, loanID); err != nil {
		return nil, err
	}

	return uc.paymentRepo.ListByLoan(ctx, loanID)
}

// GetLoanStats summarizes open loans per kind. Results are cached per stats generation; every
// loan mutation starts a new generation, so a fill that raced a mutation is never read back.
func (uc *LoanUseCase) GetLoanStats(ctx context.Context, ownerID string) (*domain.LoanStats, error) {
	var key string

	if uc.cache != nil {
		var err error
		key, err = uc.statsKey(ctx, ownerID)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("owner_id", ownerID).Msg("loan stats cache read failed")
		}
	}

	if key != "" {
		data, err := uc.cache.Get(ctx, key)
		switch {
		case err == nil:
			var stats domain.LoanStats
			if err := json.Unmarshal(data, &stats); err == nil {
				uc.recordCache("hit")
				return &stats, nil
			}
		case !errors.Is(err, ErrCacheMiss):
			zerolog.Ctx(ctx).Warn().Err(err).Str("owner_id", ownerID).Msg("loan stats cache read failed")
		}
		uc.recordCache("miss")
	}

	stats, err := uc.loanRepo.Stats(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if key != "" {
		data, err := json.Marshal(stats)
		if err == nil {
			err = uc.cache.Set(ctx, key, data, uc.statsTTL)
		}
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("owner_id", ownerID).Msg("loan stats cache write failed")
		}
	}

	return stats, nil
}

// statsKey resolves the cache key of the owner's current stats generation.
func (uc *LoanUseCase) statsKey(ctx context.Context, ownerID string) (string, error) {
	gen, err := uc.cache.Get(ctx, statsGenerationKey(ownerID))
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return "", err
	}

	return statsCacheKey(ownerID, string(gen)), nil
}

func (uc *LoanUseCase) defaultCategory(ctx context.Context, ownerID string, txType domain.TransactionType) (*string, error) {
	categoryID, err := uc.transactions.defaultCategory(ctx, ownerID, txType, uc.categoryName)
	if err != nil {
		return nil, err
	}

	if categoryID == nil {
		zerolog.Ctx(ctx).Debug().
			Str("owner_id", ownerID).
			Str("type", string(txType)).
			Str("category", uc.categoryName).
			Msg("no default loan category, posting without category")
	}

	return categoryID, nil
}

func (uc *LoanUseCase) invalidateStats(ctx context.Context, ownerID string) {
	if uc.cache == nil {
		return
	}

	gen := uc.transactions.idGen.Generate()
	ttl := max(statsGenerationTTL, 2*uc.statsTTL)
	if err := uc.cache.Set(ctx, statsGenerationKey(ownerID), []byte(gen), ttl); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("owner_id", ownerID).Msg("loan stats cache invalidation failed")
	}
}

func (uc *LoanUseCase) recordCache(result string) {
	if m := uc.transactions.metrics; m != nil {
		m.LoanStatsCacheHits.WithLabelValues(result).Inc()
	}
}

// statsGenerationTTL bounds idle generation keys. A generation outlives every stats entry
// written under it.
const statsGenerationTTL = 24 * time.Hour

func statsCacheKey(ownerID, generation string) string {
	return "loan_stats:" + ownerID + ":" + generation
}

func statsGenerationKey(ownerID string) string {
	return "loan_stats_gen:" + ownerID
}
