package usecase

import (
	"context"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	Create(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	// GetByIDsForUpdate locks the wallets in ascending id order. Missing ids are omitted.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance domain.Money, updatedAt time.Time) error
	Archive(ctx context.Context, tx Transaction, id string, updatedAt time.Time) error
	ListByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]*domain.Wallet, error)
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	FindByName(ctx context.Context, ownerID string, categoryType domain.TransactionType, name string) (*domain.Category, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Category, error)
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	GetByLoanIDForUpdate(ctx context.Context, tx Transaction, loanID string) (*domain.Transaction, error)
	SoftDelete(ctx context.Context, tx Transaction, id string, deletedAt time.Time) error
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
}

// EntryRepository defines data access for entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	ListByTransactionTx(ctx context.Context, tx Transaction, transactionID string) ([]domain.Entry, error)
	ListByTransactions(ctx context.Context, transactionIDs []string) ([]domain.Entry, error)
	// SumByWallet returns the signed sum of entries of non-deleted transactions.
	SumByWallet(ctx context.Context, walletID string) (domain.Money, error)
}

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Create(ctx context.Context, tx Transaction, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Loan, error)
	UpdateOutstanding(ctx context.Context, tx Transaction, id string, outstanding domain.Money, status domain.LoanStatus, updatedAt time.Time) error
	SoftDelete(ctx context.Context, tx Transaction, id string, deletedAt time.Time) error
	List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error)
	Stats(ctx context.Context, ownerID string) (*domain.LoanStats, error)
}

// LoanPaymentRepository defines data access for loan payments.
type LoanPaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.LoanPayment) error
	CountByLoanTx(ctx context.Context, tx Transaction, loanID string) (int64, error)
	ListByLoan(ctx context.Context, loanID string) ([]*domain.LoanPayment, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	WalletDrift(ctx context.Context, ownerID string) ([]domain.WalletDrift, error)
	LoanDrift(ctx context.Context, ownerID string) ([]domain.LoanDrift, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation that failed on a transient storage conflict.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
