package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/domain"
)

func TestTxManager_BeginCommit(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectBegin()
	pool.ExpectCommit()

	tx, err := newTxManager(pool).Begin(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tx.(*Tx).Queries())

	require.NoError(t, tx.Commit(context.Background()))
	assertExpectations(t, pool)
}

func TestTxManager_BeginFailureIsStorageError(t *testing.T) {
	pool := newMockPool(t)
	boom := errors.New("begin failed")
	pool.ExpectBegin().WillReturnError(boom)

	_, err := newTxManager(pool).Begin(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestTxManager_LockTimeout(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectBegin()
	pool.ExpectExec("SET LOCAL lock_timeout = '1500ms'").WillReturnResult(pgxmock.NewResult("SET", 0))
	pool.ExpectRollback()

	tx, err := newTxManager(pool).WithLockTimeout(1500 * time.Millisecond).Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, tx.Rollback(context.Background()))
	assertExpectations(t, pool)
}

func TestTxManager_LockTimeoutFailureRollsBack(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectBegin()
	pool.ExpectExec("SET LOCAL lock_timeout").WillReturnError(errors.New("connection reset"))
	pool.ExpectRollback()

	_, err := newTxManager(pool).WithLockTimeout(time.Second).Begin(context.Background())
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))
	assertExpectations(t, pool)
}

func TestTx_CommitFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind domain.ErrorKind
	}{
		{name: "connection lost", err: errors.New("connection reset"), wantKind: domain.KindStorage},
		{name: "serialization failure", err: &pgconn.PgError{Code: pgErrSerializationFailure}, wantKind: domain.KindConflict},
		{name: "lock timeout", err: &pgconn.PgError{Code: pgErrLockNotAvailable}, wantKind: domain.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			tx := beginMockTx(t, pool)
			pool.ExpectCommit().WillReturnError(tt.err)

			err := tx.Commit(context.Background())
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assertExpectations(t, pool)
		})
	}
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	require.NoError(t, pool.ExpectationsWereMet())
}

func beginMockTx(t *testing.T, pool pgxmock.PgxPoolIface) *Tx {
	t.Helper()
	pool.ExpectBegin()
	tx, err := newTxManager(pool).Begin(context.Background())
	require.NoError(t, err)
	return tx.(*Tx)
}
