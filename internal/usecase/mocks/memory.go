package mocks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

var errTxClosed = errors.New("memory: transaction already closed")

// MemoryStore is an in-memory ledger store. Units of work are serialized; each works on a
// private copy of the committed state that replaces it on commit.
type MemoryStore struct {
	txMu      sync.Mutex
	mu        sync.RWMutex
	committed *memState

	// CommitErr, when set, makes every Commit fail with it and discard the unit of work.
	CommitErr error

	begins atomic.Int64
}

type memState struct {
	wallets      map[string]domain.Wallet
	categories   map[string]domain.Category
	transactions map[string]domain.Transaction
	entries      []domain.Entry
	loans        map[string]domain.Loan
	payments     []domain.LoanPayment
	outbox       []domain.OutboxEvent
	users        map[string]domain.User
}

func newMemState() *memState {
	return &memState{
		wallets:      make(map[string]domain.Wallet),
		categories:   make(map[string]domain.Category),
		transactions: make(map[string]domain.Transaction),
		loans:        make(map[string]domain.Loan),
		users:        make(map[string]domain.User),
	}
}

func (st *memState) clone() *memState {
	return &memState{
		wallets:      cloneMap(st.wallets),
		categories:   cloneMap(st.categories),
		transactions: cloneMap(st.transactions),
		entries:      slices.Clone(st.entries),
		loans:        cloneMap(st.loans),
		payments:     slices.Clone(st.payments),
		outbox:       slices.Clone(st.outbox),
		users:        cloneMap(st.users),
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{committed: newMemState()}
}

// Begin starts a unit of work. It blocks while another unit of work is open.
func (s *MemoryStore) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.txMu.Lock()
	s.begins.Add(1)

	s.mu.RLock()
	state := s.committed.clone()
	s.mu.RUnlock()

	return &memTx{store: s, state: state}, nil
}

// Begins reports how many units of work were started.
func (s *MemoryStore) Begins() int64 {
	return s.begins.Load()
}

type memTx struct {
	store *MemoryStore
	state *memState
	done  bool
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return errTxClosed
	}
	t.done = true
	defer t.store.txMu.Unlock()

	if t.store.CommitErr != nil {
		return t.store.CommitErr
	}

	t.store.mu.Lock()
	t.store.committed = t.state
	t.store.mu.Unlock()

	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (s *MemoryStore) stateFor(tx usecase.Transaction) (*memState, error) {
	mt, ok := tx.(*memTx)
	if !ok || mt.store != s {
		return nil, errors.New("memory: foreign transaction handle")
	}
	if mt.done {
		return nil, errTxClosed
	}
	return mt.state, nil
}

func (s *MemoryStore) read(fn func(st *memState)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.committed)
}

// autocommit applies a single write outside any caller-held unit of work.
func (s *MemoryStore) autocommit(fn func(st *memState) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.committed.clone()
	if err := fn(next); err != nil {
		return err
	}
	s.committed = next
	return nil
}

// Seeding and inspection helpers for tests.

// SeedWallet stores w as committed state.
func (s *MemoryStore) SeedWallet(w domain.Wallet) {
	_ = s.autocommit(func(st *memState) error {
		st.wallets[w.ID] = w
		return nil
	})
}

// SeedCategory stores c as committed state.
func (s *MemoryStore) SeedCategory(c domain.Category) {
	_ = s.autocommit(func(st *memState) error {
		st.categories[c.ID] = c
		return nil
	})
}

// SeedLoan stores l as committed state without any transaction.
func (s *MemoryStore) SeedLoan(l domain.Loan) {
	_ = s.autocommit(func(st *memState) error {
		st.loans[l.ID] = l
		return nil
	})
}

// SeedTransaction stores t and its entries as committed state without touching balances.
func (s *MemoryStore) SeedTransaction(t domain.Transaction) {
	_ = s.autocommit(func(st *memState) error {
		st.entries = append(st.entries, t.Entries...)
		t.Entries = nil
		st.transactions[t.ID] = t
		return nil
	})
}

// Wallet returns the committed wallet.
func (s *MemoryStore) Wallet(id string) domain.Wallet {
	var w domain.Wallet
	s.read(func(st *memState) { w = st.wallets[id] })
	return w
}

// Loan returns the committed loan.
func (s *MemoryStore) Loan(id string) domain.Loan {
	var l domain.Loan
	s.read(func(st *memState) { l = st.loans[id] })
	return l
}

// TransactionCount returns the number of committed transactions, deleted ones included.
func (s *MemoryStore) TransactionCount() int {
	var n int
	s.read(func(st *memState) { n = len(st.transactions) })
	return n
}

// EntryCount returns the number of committed entries.
func (s *MemoryStore) EntryCount() int {
	var n int
	s.read(func(st *memState) { n = len(st.entries) })
	return n
}

// OutboxEvents returns committed outbox events in insertion order.
func (s *MemoryStore) OutboxEvents() []domain.OutboxEvent {
	var events []domain.OutboxEvent
	s.read(func(st *memState) { events = slices.Clone(st.outbox) })
	return events
}

// Repository views.

func (s *MemoryStore) Wallets() *MemoryWalletRepository           { return &MemoryWalletRepository{s} }
func (s *MemoryStore) Categories() *MemoryCategoryRepository      { return &MemoryCategoryRepository{s} }
func (s *MemoryStore) Transactions() *MemoryTransactionRepository { return &MemoryTransactionRepository{s} }
func (s *MemoryStore) Entries() *MemoryEntryRepository            { return &MemoryEntryRepository{s} }
func (s *MemoryStore) Loans() *MemoryLoanRepository               { return &MemoryLoanRepository{s} }
func (s *MemoryStore) Payments() *MemoryLoanPaymentRepository     { return &MemoryLoanPaymentRepository{s} }
func (s *MemoryStore) Outbox() *MemoryOutboxRepository            { return &MemoryOutboxRepository{s} }
func (s *MemoryStore) Ledger() *MemoryLedgerRepository            { return &MemoryLedgerRepository{s} }
func (s *MemoryStore) Users() *MemoryUserRepository               { return &MemoryUserRepository{s} }

// MemoryWalletRepository implements usecase.WalletRepository.
type MemoryWalletRepository struct{ s *MemoryStore }

func (r *MemoryWalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return err
	}
	if _, ok := st.wallets[wallet.ID]; ok {
		return &domain.ConflictError{Constraint: "wallets_pkey", Err: errors.New("duplicate wallet id")}
	}
	st.wallets[wallet.ID] = *wallet
	return nil
}

func (r *MemoryWalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	var w domain.Wallet
	var ok bool
	r.s.read(func(st *memState) { w, ok = st.wallets[id] })
	if !ok {
		return nil, &domain.WalletNotFoundError{WalletID: id, Reason: "not found"}
	}
	return &w, nil
}

func (r *MemoryWalletRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(ids)
	sort.Strings(sorted)

	wallets := make([]*domain.Wallet, 0, len(sorted))
	for _, id := range slices.Compact(sorted) {
		if w, ok := st.wallets[id]; ok {
			wallets = append(wallets, &w)
		}
	}
	return wallets, nil
}

func (r *MemoryWalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance domain.Money, updatedAt time.Time) error {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return err
	}
	w, ok := st.wallets[id]
	if !ok {
		return &domain.WalletNotFoundError{WalletID: id, Reason: "not found"}
	}
	w.CurrentBalance = balance
	w.Version++
	w.UpdatedAt = updatedAt
	st.wallets[id] = w
	return nil
}

func (r *MemoryWalletRepository) Archive(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return err
	}
	w, ok := st.wallets[id]
	if !ok {
		return &domain.WalletNotFoundError{WalletID: id, Reason: "not found"}
	}
	w.Archived = true
	w.UpdatedAt = updatedAt
	st.wallets[id] = w
	return nil
}

func (r *MemoryWalletRepository) ListByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]*domain.Wallet, error) {
	var wallets []*domain.Wallet
	r.s.read(func(st *memState) {
		for _, w := range st.wallets {
			if w.OwnerID != ownerID || (w.Archived && !includeArchived) {
				continue
			}
			w := w
			wallets = append(wallets, &w)
		}
	})
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })
	return wallets, nil
}

// MemoryCategoryRepository implements usecase.CategoryRepository.
type MemoryCategoryRepository struct{ s *MemoryStore }

func (r *MemoryCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.s.autocommit(func(st *memState) error {
		for _, c := range st.categories {
			if c.OwnerID == category.OwnerID && c.Type == category.Type && strings.EqualFold(c.Name, category.Name) {
				return &domain.ConflictError{Constraint: "categories_owner_type_name_key", Err: errors.New("duplicate category")}
			}
		}
		st.categories[category.ID] = *category
		return nil
	})
}

func (r *MemoryCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	var ok bool
	r.s.read(func(st *memState) { c, ok = st.categories[id] })
	if !ok {
		return nil, &domain.CategoryInvalidError{CategoryID: id, Reason: "not found"}
	}
	return &c, nil
}

func (r *MemoryCategoryRepository) FindByName(ctx context.Context, ownerID string, categoryType domain.TransactionType, name string) (*domain.Category, error) {
	var found *domain.Category
	r.s.read(func(st *memState) {
		for _, c := range st.categories {
			if c.OwnerID == ownerID && c.Type == categoryType && strings.EqualFold(c.Name, name) {
				c := c
				found = &c
				return
			}
		}
	})
	if found == nil {
		return nil, &domain.CategoryInvalidError{Reason: "no " + string(categoryType) + " category named " + name}
	}
	return found, nil
}

func (r *MemoryCategoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Category, error) {
	var categories []*domain.Category
	r.s.read(func(st *memState) {
		for _, c := range st.categories {
			if c.OwnerID == ownerID {
				c := c
				categories = append(categories, &c)
			}
		}
	})
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// MemoryTransactionRepository implements usecase.TransactionRepository.
type MemoryTransactionRepository struct{ s *MemoryStore }

func (r *MemoryTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return err
	}

	if transaction.LoanID != nil {
		if _, ok := st.loans[*transaction.LoanID]; !ok {
			return &domain.ConflictError{Constraint: "transactions_loan_id_fkey", Err: errors.New("loan does not exist")}
		}
		for _, t := range st.transactions {
			if t.LoanID != nil && *t.LoanID == *transaction.LoanID {
				return &domain.ConflictError{Constraint: "transactions_loan_id_key", Err: errors.New("duplicate loan reference")}
			}
		}
	}

	row := *transaction
	row.Entries = nil
	row.LoanPaymentID = nil
	st.transactions[row.ID] = row
	return nil
}

func (r *MemoryTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var t *domain.Transaction
	r.s.read(func(st *memState) { t = st.projectTransaction(id) })
	if t == nil {
		return nil, &domain.TransactionNotFoundError{TransactionID: id}
	}
	return t, nil
}

func (r *MemoryTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return nil, err
	}
	t := st.projectTransaction(id)
	if t == nil {
		return nil, &domain.TransactionNotFoundError{TransactionID: id}
	}
	return t, nil
}

func (r *MemoryTransactionRepository) GetByLoanIDForUpdate(ctx context.Context, tx usecase.Transaction, loanID string) (*domain.Transaction, error) {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return nil, err
	}
	for id, t := range st.transactions {
		if t.LoanID != nil && *t.LoanID == loanID {
			return st.projectTransaction(id), nil
		}
	}
	return nil, &domain.TransactionNotFoundError{TransactionID: "loan:" + loanID}
}

func (r *MemoryTransactionRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return err
	}
	t, ok := st.transactions[id]
	if !ok {
		return &domain.TransactionNotFoundError{TransactionID: id}
	}
	t.DeletedAt = &deletedAt
	st.transactions[id] = t
	return nil
}

func (r *MemoryTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	var matched []*domain.Transaction
	r.s.read(func(st *memState) {
		for id, t := range st.transactions {
			if t.OwnerID != filter.OwnerID || t.DeletedAt != nil {
				continue
			}
			if filter.Type != nil && t.Type != *filter.Type {
				continue
			}
			if filter.From != nil && t.TransactionDate.Before(*filter.From) {
				continue
			}
			if filter.To != nil && t.TransactionDate.After(*filter.To) {
				continue
			}
			if filter.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *filter.CategoryID) {
				continue
			}
			if filter.WalletID != nil && !st.touchesWallet(id, *filter.WalletID) {
				continue
			}
			projected := st.projectTransaction(id)
			if filter.ExcludeLoanRelated && projected.IsLoanRelated() {
				continue
			}
			matched = append(matched, projected)
		}
	})

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.After(b.TransactionDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []*domain.Transaction{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], total, nil
}

func (st *memState) projectTransaction(id string) *domain.Transaction {
	t, ok := st.transactions[id]
	if !ok {
		return nil
	}
	for _, p := range st.payments {
		if p.TransactionID == id {
			paymentID := p.ID
			t.LoanPaymentID = &paymentID
			break
		}
	}
	return &t
}

func (st *memState) touchesWallet(transactionID, walletID string) bool {
	for _, e := range st.entries {
		if e.TransactionID == transactionID && e.WalletID == walletID {
			return true
		}
	}
	return false
}

// MemoryEntryRepository implements usecase.EntryRepository.
type MemoryEntryRepository struct{ s *MemoryStore }

func (r *MemoryEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return err
	}
	if _, ok := st.transactions[entry.TransactionID]; !ok {
		return &domain.ConflictError{Constraint: "transaction_entries_transaction_id_fkey", Err: errors.New("transaction does not exist")}
	}
	if _, ok := st.wallets[entry.WalletID]; !ok {
		return &domain.ConflictError{Constraint: "transaction_entries_wallet_id_fkey", Err: errors.New("wallet does not exist")}
	}
	st.entries = append(st.entries, *entry)
	return nil
}

func (r *MemoryEntryRepository) ListByTransactionTx(ctx context.Context, tx usecase.Transaction, transactionID string) ([]domain.Entry, error) {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return nil, err
	}
	return st.entriesOf(map[string]bool{transactionID: true}), nil
}

func (r *MemoryEntryRepository) ListByTransactions(ctx context.Context, transactionIDs []string) ([]domain.Entry, error) {
	want := make(map[string]bool, len(transactionIDs))
	for _, id := range transactionIDs {
		want[id] = true
	}

	var entries []domain.Entry
	r.s.read(func(st *memState) { entries = st.entriesOf(want) })
	return entries, nil
}

func (r *MemoryEntryRepository) SumByWallet(ctx context.Context, walletID string) (domain.Money, error) {
	sum := domain.ZeroMoney
	r.s.read(func(st *memState) { sum = st.sumByWallet(walletID) })
	return sum, nil
}

func (st *memState) entriesOf(transactionIDs map[string]bool) []domain.Entry {
	var entries []domain.Entry
	for _, e := range st.entries {
		if transactionIDs[e.TransactionID] {
			entries = append(entries, e)
		}
	}
	return entries
}

func (st *memState) sumByWallet(walletID string) domain.Money {
	sum := domain.ZeroMoney
	for _, e := range st.entries {
		if e.WalletID != walletID {
			continue
		}
		if t, ok := st.transactions[e.TransactionID]; ok && t.DeletedAt == nil {
			sum = sum.Add(e.SignedAmount())
		}
	}
	return sum
}

// MemoryLoanRepository implements usecase.LoanRepository.
type MemoryLoanRepository struct{ s *MemoryStore }

func (r *MemoryLoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return err
	}
	if _, ok := st.wallets[loan.WalletID]; !ok {
		return &domain.ConflictError{Constraint: "loans_wallet_id_fkey", Err: errors.New("wallet does not exist")}
	}
	st.loans[loan.ID] = *loan
	return nil
}

func (r *MemoryLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	var l domain.Loan
	var ok bool
	r.s.read(func(st *memState) { l, ok = st.loans[id] })
	if !ok {
		return nil, &domain.LoanNotFoundError{LoanID: id}
	}
	return &l, nil
}

func (r *MemoryLoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return nil, err
	}
	l, ok := st.loans[id]
	if !ok {
		return nil, &domain.LoanNotFoundError{LoanID: id}
	}
	return &l, nil
}

func (r *MemoryLoanRepository) UpdateOutstanding(ctx context.Context, tx usecase.Transaction, id string, outstanding domain.Money, status domain.LoanStatus, updatedAt time.Time) error {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return err
	}
	l, ok := st.loans[id]
	if !ok {
		return &domain.LoanNotFoundError{LoanID: id}
	}
	if outstanding.IsNegative() || outstanding.GreaterThan(l.Principal) {
		return &domain.ConflictError{Constraint: "loans_outstanding_check", Err: fmt.Errorf("outstanding %s out of range", outstanding)}
	}
	l.OutstandingAmount = outstanding
	l.Status = status
	l.UpdatedAt = updatedAt
	st.loans[id] = l
	return nil
}

func (r *MemoryLoanRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return err
	}
	l, ok := st.loans[id]
	if !ok {
		return &domain.LoanNotFoundError{LoanID: id}
	}
	l.DeletedAt = &deletedAt
	l.UpdatedAt = deletedAt
	st.loans[id] = l
	return nil
}

func (r *MemoryLoanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	r.s.read(func(st *memState) {
		for _, l := range st.loans {
			if l.OwnerID != filter.OwnerID || l.DeletedAt != nil {
				continue
			}
			if filter.Kind != nil && l.Kind != *filter.Kind {
				continue
			}
			if filter.Status != nil && l.Status != *filter.Status {
				continue
			}
			l := l
			loans = append(loans, &l)
		}
	})

	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].CreatedAt.Equal(loans[j].CreatedAt) {
			return loans[i].CreatedAt.After(loans[j].CreatedAt)
		}
		return loans[i].ID > loans[j].ID
	})

	if filter.Offset >= len(loans) {
		return []*domain.Loan{}, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > len(loans) {
		end = len(loans)
	}
	return loans[filter.Offset:end], nil
}

func (r *MemoryLoanRepository) Stats(ctx context.Context, ownerID string) (*domain.LoanStats, error) {
	stats := &domain.LoanStats{}
	r.s.read(func(st *memState) {
		for _, l := range st.loans {
			if l.OwnerID != ownerID || l.DeletedAt != nil {
				continue
			}
			stats.TotalLoans++
			if l.Status != domain.LoanStatusOpen {
				continue
			}
			bucket := &stats.YouOwe
			if l.Kind == domain.LoanKindOwedToYou {
				bucket = &stats.OwedToYou
			}
			bucket.Count++
			bucket.TotalAmount = bucket.TotalAmount.Add(l.OutstandingAmount)
		}
	})
	return stats, nil
}

// MemoryLoanPaymentRepository implements usecase.LoanPaymentRepository.
type MemoryLoanPaymentRepository struct{ s *MemoryStore }

func (r *MemoryLoanPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.LoanPayment) error {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return err
	}
	for _, p := range st.payments {
		if p.TransactionID == payment.TransactionID {
			return &domain.ConflictError{Constraint: "loan_payments_transaction_id_key", Err: errors.New("duplicate transaction reference")}
		}
	}
	if _, ok := st.transactions[payment.TransactionID]; !ok {
		return &domain.ConflictError{Constraint: "loan_payments_transaction_id_fkey", Err: errors.New("transaction does not exist")}
	}
	st.payments = append(st.payments, *payment)
	return nil
}

func (r *MemoryLoanPaymentRepository) CountByLoanTx(ctx context.Context, tx usecase.Transaction, loanID string) (int64, error) {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, p := range st.payments {
		if p.LoanID == loanID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryLoanPaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.LoanPayment, error) {
	var payments []*domain.LoanPayment
	r.s.read(func(st *memState) {
		for _, p := range st.payments {
			if p.LoanID == loanID {
				p := p
				payments = append(payments, &p)
			}
		}
	})
	return payments, nil
}

// MemoryOutboxRepository implements usecase.OutboxRepository.
type MemoryOutboxRepository struct{ s *MemoryStore }

func (r *MemoryOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	st, err := r.s.stateFor(tx)
	if err != nil {
		return err
	}
	st.outbox = append(st.outbox, *event)
	return nil
}

func (r *MemoryOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent
	r.s.read(func(st *memState) {
		for _, e := range st.outbox {
			if e.Published {
				continue
			}
			if limit > 0 && len(events) == limit {
				return
			}
			e := e
			events = append(events, &e)
		}
	})
	return events, nil
}

func (r *MemoryOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.s.autocommit(func(st *memState) error {
		for i := range st.outbox {
			if st.outbox[i].ID == id {
				st.outbox[i].Published = true
				st.outbox[i].PublishedAt = &publishedAt
				return nil
			}
		}
		return fmt.Errorf("outbox event %s not found", id)
	})
}

func (r *MemoryOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.s.autocommit(func(st *memState) error {
		st.outbox = slices.DeleteFunc(st.outbox, func(e domain.OutboxEvent) bool {
			return e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before)
		})
		return nil
	})
}

// MemoryLedgerRepository implements usecase.LedgerRepository.
type MemoryLedgerRepository struct{ s *MemoryStore }

func (r *MemoryLedgerRepository) WalletDrift(ctx context.Context, ownerID string) ([]domain.WalletDrift, error) {
	var drift []domain.WalletDrift
	r.s.read(func(st *memState) {
		for _, w := range st.wallets {
			if w.OwnerID != ownerID {
				continue
			}
			computed := w.OpeningBalance.Add(st.sumByWallet(w.ID))
			if !computed.Equal(w.CurrentBalance) {
				drift = append(drift, domain.WalletDrift{WalletID: w.ID, Recorded: w.CurrentBalance, Computed: computed})
			}
		}
	})
	sort.Slice(drift, func(i, j int) bool { return drift[i].WalletID < drift[j].WalletID })
	return drift, nil
}

func (r *MemoryLedgerRepository) LoanDrift(ctx context.Context, ownerID string) ([]domain.LoanDrift, error) {
	var drift []domain.LoanDrift
	r.s.read(func(st *memState) {
		for _, l := range st.loans {
			if l.OwnerID != ownerID || l.DeletedAt != nil {
				continue
			}
			paid := domain.ZeroMoney
			for _, p := range st.payments {
				if p.LoanID == l.ID {
					paid = paid.Add(p.Amount)
				}
			}
			expected := l.Principal.Sub(paid).ClampZero()
			if !expected.Equal(l.OutstandingAmount) || l.Status != domain.StatusFor(l.OutstandingAmount) {
				drift = append(drift, domain.LoanDrift{LoanID: l.ID, Outstanding: l.OutstandingAmount, Expected: expected, Status: l.Status})
			}
		}
	})
	sort.Slice(drift, func(i, j int) bool { return drift[i].LoanID < drift[j].LoanID })
	return drift, nil
}

// MemoryUserRepository implements usecase.UserRepository.
type MemoryUserRepository struct{ s *MemoryStore }

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.s.autocommit(func(st *memState) error {
		for _, u := range st.users {
			if u.Email == user.Email {
				return &domain.ConflictError{Constraint: "users_email_key", Err: errors.New("duplicate email")}
			}
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	var ok bool
	r.s.read(func(st *memState) { u, ok = st.users[id] })
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var found *domain.User
	r.s.read(func(st *memState) {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, domain.ErrUserNotFound
	}
	return found, nil
}

// SequenceIDGenerator implements usecase.IDGenerator with zero-padded counters,
// so generated ids sort in creation order.
type SequenceIDGenerator struct {
	prefix string
	n      atomic.Int64
}

// NewSequenceIDGenerator creates a generator producing prefix-000001, prefix-000002, ...
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	return &SequenceIDGenerator{prefix: prefix}
}

func (g *SequenceIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%06d", g.prefix, g.n.Add(1))
}
