package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
)

// TransactionUseCase creates, reads and soft-deletes income, expense and transfer transactions.
type TransactionUseCase struct {
	txManager       TransactionManager
	walletRepo      WalletRepository
	categoryRepo    CategoryRepository
	transactionRepo TransactionRepository
	entryRepo       EntryRepository
	outboxRepo      OutboxRepository
	projector       *BalanceProjector
	idGen           IDGenerator
	retrier         Retrier
	metrics         *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	categoryRepo CategoryRepository,
	transactionRepo TransactionRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:       txManager,
		walletRepo:      walletRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		entryRepo:       entryRepo,
		outboxRepo:      outboxRepo,
		projector:       NewBalanceProjector(walletRepo),
		idGen:           idGen,
	}
}

// WithMetrics enables Prometheus instrumentation.
func (uc *TransactionUseCase) WithMetrics(m *metrics.Metrics) *TransactionUseCase {
	uc.metrics = m
	return uc
}

// WithRetrier re-runs units of work that lose a deadlock or serialization race.
func (uc *TransactionUseCase) WithRetrier(r Retrier) *TransactionUseCase {
	uc.retrier = r
	return uc
}

func (uc *TransactionUseCase) unitOfWork(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	if uc.retrier == nil {
		return inUnitOfWork(ctx, uc.txManager, fn)
	}

	return uc.retrier.Retry(ctx, func() error {
		return inUnitOfWork(ctx, uc.txManager, fn)
	})
}

// CreateTransactionInput represents input for creating a transaction.
// WalletID is used by income and expense, FromWalletID/ToWalletID by transfer.
type CreateTransactionInput struct {
	OwnerID         string
	Type            domain.TransactionType
	WalletID        string
	FromWalletID    string
	ToWalletID      string
	CategoryID      string
	Amount          domain.Money
	TransactionDate time.Time
	Note            string
}

// CreateTransaction validates input, posts the transaction with its entries and applies
// the balance deltas in one unit of work.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (txn *domain.Transaction, err error) {
	start := time.Now()
	defer func() { observe(uc.metrics, "create_transaction", start, err) }()

	// 0. Validate inputs before touching the store
	if err := validateTransactionInput(input); err != nil {
		return nil, err
	}

	// 1. Fast-fail checks outside the unit of work
	categoryID, err := uc.checkCategory(ctx, input)
	if err != nil {
		return nil, err
	}

	var entries []domain.Entry
	switch input.Type {
	case domain.TransactionTypeIncome, domain.TransactionTypeExpense:
		direction := domain.DirectionFor(input.Type)
		if err := uc.precheckWallet(ctx, input.OwnerID, input.WalletID, direction, input.Amount); err != nil {
			return nil, err
		}
		entries = []domain.Entry{{WalletID: input.WalletID, Direction: direction, Amount: input.Amount}}
	case domain.TransactionTypeTransfer:
		if err := uc.precheckWallet(ctx, input.OwnerID, input.FromWalletID, domain.DirectionOut, input.Amount); err != nil {
			return nil, err
		}
		if err := uc.precheckWallet(ctx, input.OwnerID, input.ToWalletID, domain.DirectionIn, input.Amount); err != nil {
			return nil, err
		}
		entries = []domain.Entry{
			{WalletID: input.FromWalletID, Direction: domain.DirectionOut, Amount: input.Amount},
			{WalletID: input.ToWalletID, Direction: domain.DirectionIn, Amount: input.Amount},
		}
	}

	txn = uc.newTransaction(input.OwnerID, input.Type, input.Amount, input.TransactionDate, categoryID, input.Note, nil, entries)
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	// 2. Authoritative re-check and write
	err = uc.unitOfWork(ctx, func(ctx context.Context, tx Transaction) error {
		if err := uc.post(ctx, tx, txn); err != nil {
			return err
		}
		return uc.outboxRepo.Create(ctx, tx, uc.createdEvent(txn))
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsCreated.WithLabelValues(string(txn.Type)).Inc()
		uc.metrics.TransactionAmount.WithLabelValues(string(txn.Type)).Observe(txn.Amount.Decimal().InexactFloat64())
	}

	return txn, nil
}

// GetTransaction returns a visible transaction with its entries.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	txn, err := uc.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if txn.OwnerID != ownerID || txn.IsDeleted() {
		return nil, &domain.TransactionNotFoundError{TransactionID: id}
	}

	entries, err := uc.entryRepo.ListByTransactions(ctx, []string{txn.ID})
	if err != nil {
		return nil, err
	}
	txn.Entries = entries

	return txn, nil
}

// ListTransactionsInput represents listing filters.
type ListTransactionsInput struct {
	OwnerID            string
	Type               *domain.TransactionType
	From               *time.Time
	To                 *time.Time
	CategoryID         *string
	WalletID           *string
	ExcludeLoanRelated bool
	Limit              int
	Offset             int
}

// TransactionPage is one page of a transaction listing.
type TransactionPage struct {
	Items   []*domain.Transaction
	Total   int64
	HasMore bool
}

// ListTransactions returns non-deleted transactions, newest first.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) (*TransactionPage, error) {
	if input.Type != nil && !input.Type.IsValid() {
		return nil, domain.NewValidationError(domain.ErrUnsupportedType, "type", string(*input.Type))
	}

	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		return nil, domain.NewValidationError(domain.ErrInvalidInput, "to", "must not precede from")
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	items, total, err := uc.transactionRepo.List(ctx, domain.TransactionFilter{
		OwnerID:            input.OwnerID,
		Type:               input.Type,
		From:               input.From,
		To:                 input.To,
		CategoryID:         input.CategoryID,
		WalletID:           input.WalletID,
		ExcludeLoanRelated: input.ExcludeLoanRelated,
		Limit:              limit,
		Offset:             offset,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.attachEntries(ctx, items); err != nil {
		return nil, err
	}

	return &TransactionPage{
		Items:   items,
		Total:   total,
		HasMore: int64(offset+len(items)) < total,
	}, nil
}

// DeleteTransaction soft-deletes a transaction and reverts its balance deltas.
// Loan transactions change only through loan operations.
func (uc *TransactionUseCase) DeleteTransaction(ctx context.Context, ownerID, id string) (txn *domain.Transaction, err error) {
	start := time.Now()
	defer func() { observe(uc.metrics, "delete_transaction", start, err) }()

	err = uc.unitOfWork(ctx, func(ctx context.Context, tx Transaction) error {
		locked, err := uc.transactionRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if locked.OwnerID != ownerID || locked.IsDeleted() {
			return &domain.TransactionNotFoundError{TransactionID: id}
		}

		if locked.IsLoanRelated() {
			return &domain.LoanRelatedTransactionError{TransactionID: id}
		}

		entries, err := uc.entryRepo.ListByTransactionTx(ctx, tx, id)
		if err != nil {
			return err
		}
		locked.Entries = entries

		if _, err := uc.projector.RevertDeltas(ctx, tx, ownerID, locked.Deltas()...); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := uc.transactionRepo.SoftDelete(ctx, tx, id, now); err != nil {
			return err
		}
		locked.DeletedAt = &now

		txn = locked
		return uc.outboxRepo.Create(ctx, tx, newOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeTransaction,
			id,
			domain.EventTypeTransactionDeleted,
			map[string]any{
				"transaction_id": id,
				"owner_id":       ownerID,
				"reverted":       true,
			},
			now,
		))
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsDeleted.Inc()
	}

	return txn, nil
}

// newTransaction assigns ids and timestamps to a transaction and its entries.
func (uc *TransactionUseCase) newTransaction(
	ownerID string,
	txType domain.TransactionType,
	amount domain.Money,
	date time.Time,
	categoryID *string,
	note string,
	loanID *string,
	entries []domain.Entry,
) *domain.Transaction {
	now := time.Now().UTC()
	if date.IsZero() {
		date = now
	}

	txn := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		OwnerID:         ownerID,
		Type:            txType,
		TransactionDate: date,
		CategoryID:      categoryID,
		Amount:          amount,
		Note:            note,
		LoanID:          loanID,
		CreatedAt:       now,
		Entries:         entries,
	}

	for i := range txn.Entries {
		txn.Entries[i].ID = uc.idGen.Generate()
		txn.Entries[i].TransactionID = txn.ID
		txn.Entries[i].CreatedAt = now
	}

	return txn
}

// post applies one balance delta per entry and then writes the transaction with its entries,
// all in tx. Wallet rows are locked before any row referencing them is inserted.
func (uc *TransactionUseCase) post(ctx context.Context, tx Transaction, txn *domain.Transaction) error {
	if _, err := uc.projector.ApplyDeltas(ctx, tx, txn.OwnerID, txn.Deltas()...); err != nil {
		return err
	}

	return uc.record(ctx, tx, txn)
}

// record inserts a transaction and its entries. Callers hold the wallet locks.
func (uc *TransactionUseCase) record(ctx context.Context, tx Transaction, txn *domain.Transaction) error {
	if err := uc.transactionRepo.Create(ctx, tx, txn); err != nil {
		return err
	}

	for i := range txn.Entries {
		if err := uc.entryRepo.Create(ctx, tx, &txn.Entries[i]); err != nil {
			return err
		}
	}

	return nil
}

func (uc *TransactionUseCase) createdEvent(txn *domain.Transaction) *domain.OutboxEvent {
	walletIDs := make([]string, 0, len(txn.Entries))
	for _, e := range txn.Entries {
		walletIDs = append(walletIDs, e.WalletID)
	}

	payload := map[string]any{
		"transaction_id": txn.ID,
		"owner_id":       txn.OwnerID,
		"type":           string(txn.Type),
		"amount":         txn.Amount.String(),
		"wallet_ids":     walletIDs,
	}
	if txn.LoanID != nil {
		payload["loan_id"] = *txn.LoanID
	}

	return newOutboxEvent(
		uc.idGen.Generate(),
		domain.AggregateTypeTransaction,
		txn.ID,
		domain.EventTypeTransactionCreated,
		payload,
		txn.CreatedAt,
	)
}

// precheckWallet is the fast-fail check outside the unit of work. The projector re-checks under lock.
func (uc *TransactionUseCase) precheckWallet(ctx context.Context, ownerID, walletID string, direction domain.Direction, amount domain.Money) error {
	wallet, err := uc.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return err
	}

	if err := wallet.CheckPostable(ownerID); err != nil {
		return err
	}

	if direction == domain.DirectionOut {
		return wallet.ValidateDelta(amount.Neg())
	}

	return nil
}

func (uc *TransactionUseCase) checkCategory(ctx context.Context, input CreateTransactionInput) (*string, error) {
	if input.Type == domain.TransactionTypeTransfer {
		return nil, nil
	}

	category, err := uc.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	if err := category.CheckUsableFor(input.OwnerID, input.Type); err != nil {
		return nil, err
	}

	return &category.ID, nil
}

// defaultCategory looks up the reserved category by name. Absence is not an error.
func (uc *TransactionUseCase) defaultCategory(ctx context.Context, ownerID string, txType domain.TransactionType, name string) (*string, error) {
	category, err := uc.categoryRepo.FindByName(ctx, ownerID, txType, name)
	if errors.Is(err, domain.ErrCategoryInvalid) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &category.ID, nil
}

func (uc *TransactionUseCase) attachEntries(ctx context.Context, items []*domain.Transaction) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	byID := make(map[string]*domain.Transaction, len(items))
	for i, txn := range items {
		ids[i] = txn.ID
		byID[txn.ID] = txn
	}

	entries, err := uc.entryRepo.ListByTransactions(ctx, ids)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if txn, ok := byID[e.TransactionID]; ok {
			txn.Entries = append(txn.Entries, e)
		}
	}

	return nil
}

func validateTransactionInput(input CreateTransactionInput) error {
	if !input.Type.IsValid() {
		return domain.NewValidationError(domain.ErrUnsupportedType, "type", string(input.Type))
	}

	if err := domain.ValidateAmount("amount", input.Amount); err != nil {
		return err
	}

	if err := domain.ValidateNote(input.Note); err != nil {
		return err
	}

	switch input.Type {
	case domain.TransactionTypeTransfer:
		if input.FromWalletID == "" || input.ToWalletID == "" {
			return domain.NewValidationError(domain.ErrInvalidInput, "from_wallet_id", "from_wallet_id and to_wallet_id are required")
		}
		if input.FromWalletID == input.ToWalletID {
			return domain.NewValidationError(domain.ErrSameWalletTransfer, "to_wallet_id", "must differ from from_wallet_id")
		}
		if input.CategoryID != "" {
			return &domain.CategoryInvalidError{CategoryID: input.CategoryID, Reason: "not allowed on transfer"}
		}
	default:
		if input.WalletID == "" {
			return domain.NewValidationError(domain.ErrInvalidInput, "wallet_id", "is required")
		}
		if input.CategoryID == "" {
			return &domain.CategoryInvalidError{Reason: "required for " + string(input.Type)}
		}
	}

	return nil
}
