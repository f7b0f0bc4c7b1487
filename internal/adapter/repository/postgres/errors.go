package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/pocketledger/internal/domain"
)

// PostgreSQL error codes mapped to ledger conflicts.
const (
	pgErrUniqueViolation      = "23505"
	pgErrForeignKeyViolation  = "23503"
	pgErrCheckViolation       = "23514"
	pgErrSerializationFailure = "40001"
	pgErrDeadlock             = "40P01"
	pgErrLockNotAvailable     = "55P03"
)

// mapError turns driver failures into ledger errors. Ledger errors pass through.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var ledgerErr domain.Error
	if errors.As(err, &ledgerErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrUniqueViolation, pgErrForeignKeyViolation, pgErrCheckViolation,
			pgErrSerializationFailure, pgErrDeadlock, pgErrLockNotAvailable:
			constraint := pgErr.ConstraintName
			if constraint == "" {
				constraint = pgErr.Code
			}
			return &domain.ConflictError{Constraint: constraint, Err: err}
		}
	}

	return &domain.StorageError{Op: op, Err: err}
}
