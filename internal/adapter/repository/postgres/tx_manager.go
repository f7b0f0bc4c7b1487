package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/pocketledger/internal/infrastructure/postgres/generated"
	"github.com/iho/pocketledger/internal/usecase"
)

type txStarter interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager opens units of work on a pgx pool.
type TxManager struct {
	pool        txStarter
	lockTimeout time.Duration
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManager(pool)
}

func newTxManager(pool txStarter) *TxManager {
	return &TxManager{pool: pool}
}

// WithLockTimeout bounds how long a unit of work waits for a wallet or loan
// row lock. A unit of work that times out fails with a conflict.
func (m *TxManager) WithLockTimeout(d time.Duration) *TxManager {
	m.lockTimeout = d
	return m
}

// Begin starts a read-committed transaction. Balance and loan rows are
// serialized by explicit row locks, not by the isolation level.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, mapError("begin", err)
	}

	if m.lockTimeout > 0 {
		// SET does not take bind parameters
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", m.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, mapError("set lock timeout", err)
		}
	}

	return &Tx{tx: tx, queries: generated.New(tx)}, nil
}

// Tx is one open unit of work.
type Tx struct {
	tx      pgx.Tx
	queries *generated.Queries
}

// Commit commits the transaction. A failed commit leaves nothing applied.
func (t *Tx) Commit(ctx context.Context) error {
	return mapError("commit", t.tx.Commit(ctx))
}

// Rollback rolls back the transaction. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return mapError("rollback", err)
}

// Queries returns the generated queries bound to this transaction.
func (t *Tx) Queries() *generated.Queries {
	return t.queries
}
